package migration

import (
	"github.com/rflorenc/scm-migration-workbench/internal/models"
)

// FilterSelection returns a copy of sel holding only the items whose verdict
// in report needs a destination-side call. Items without a verdict are
// dropped, as are containers left empty. sel is not modified.
func FilterSelection(sel *models.Selection, report *models.ValidationReport) *models.Selection {
	keep := make(map[models.ItemKey]bool, len(report.ItemDetails))
	for _, d := range report.ItemDetails {
		keep[d.Key()] = d.NeedsPush()
	}

	out := &models.Selection{DefaultStrategy: sel.DefaultStrategy}
	for _, ref := range sel.Containers() {
		c := filterContainer(ref, keep)
		if c.Empty() {
			continue
		}
		if ref.Kind == models.SourceFolder {
			out.Folders = append(out.Folders, c)
		} else {
			out.Snippets = append(out.Snippets, c)
		}
	}

	for _, t := range sel.InfrastructureTypes() {
		for _, item := range sel.Infrastructure[t] {
			if !keep[models.KeyFor(models.SourceInfrastructure, nil, t, item)] {
				continue
			}
			if out.Infrastructure == nil {
				out.Infrastructure = make(map[models.ConfigType][]models.Item)
			}
			out.Infrastructure[t] = append(out.Infrastructure[t], item)
		}
	}
	return out
}

func filterContainer(ref models.ContainerRef, keep map[models.ItemKey]bool) models.Container {
	src := ref.Container
	c := models.Container{
		Name:                src.Name,
		OriginalName:        src.OriginalName,
		DestinationOverride: src.DestinationOverride,
	}
	src.Walk(func(t models.ConfigType, items []models.Item) {
		for _, item := range items {
			if keep[models.KeyFor(ref.Kind, src, t, item)] {
				c.AddItem(t, item)
			}
		}
	})
	return c
}

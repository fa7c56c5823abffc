package migration

import (
	"github.com/rflorenc/scm-migration-workbench/internal/models"
)

// IncludeDependencies returns a copy of sel with every missing dependency
// added to the container it was found in. Each added item carries an override
// that sends it to the destination of the item that needed it. Dependencies
// already present are not added twice. sel is not modified.
func IncludeDependencies(sel *models.Selection, deps []models.MissingDependency) *models.Selection {
	out := copySelection(sel)
	for _, dep := range deps {
		item := models.Item{
			Name:                dep.ReferencedName,
			Payload:             dep.Record,
			DestinationOverride: dep.TargetDestination.Settings(),
		}

		if dep.SourceKind == models.SourceInfrastructure {
			if hasItem(out.Infrastructure[dep.ReferencedType], dep.ReferencedName) {
				continue
			}
			if out.Infrastructure == nil {
				out.Infrastructure = make(map[models.ConfigType][]models.Item)
			}
			out.Infrastructure[dep.ReferencedType] = append(out.Infrastructure[dep.ReferencedType], item)
			continue
		}

		c := out.Find(dep.SourceKind, dep.SourceContainer)
		if c == nil {
			nc := models.Container{Name: dep.SourceContainer}
			if dep.SourceKind == models.SourceFolder {
				out.Folders = append(out.Folders, nc)
				c = &out.Folders[len(out.Folders)-1]
			} else {
				out.Snippets = append(out.Snippets, nc)
				c = &out.Snippets[len(out.Snippets)-1]
			}
		}
		if hasItem(c.Items(dep.ReferencedType), dep.ReferencedName) {
			continue
		}
		c.AddItem(dep.ReferencedType, item)
	}
	return out
}

func hasItem(items []models.Item, name string) bool {
	for _, it := range items {
		if it.ItemName() == name {
			return true
		}
	}
	return false
}

// copySelection copies the tree structure of sel. Items and payloads are
// shared; only the slices and maps that hold them are new.
func copySelection(sel *models.Selection) *models.Selection {
	out := &models.Selection{DefaultStrategy: sel.DefaultStrategy}
	for _, ref := range sel.Containers() {
		c := copyContainer(ref.Container)
		if ref.Kind == models.SourceFolder {
			out.Folders = append(out.Folders, c)
		} else {
			out.Snippets = append(out.Snippets, c)
		}
	}
	if len(sel.Infrastructure) > 0 {
		out.Infrastructure = make(map[models.ConfigType][]models.Item, len(sel.Infrastructure))
		for t, items := range sel.Infrastructure {
			out.Infrastructure[t] = append([]models.Item(nil), items...)
		}
	}
	return out
}

func copyContainer(src *models.Container) models.Container {
	c := models.Container{
		Name:                src.Name,
		OriginalName:        src.OriginalName,
		DestinationOverride: src.DestinationOverride,
	}
	src.Walk(func(t models.ConfigType, items []models.Item) {
		for _, item := range items {
			c.AddItem(t, item)
		}
	})
	return c
}

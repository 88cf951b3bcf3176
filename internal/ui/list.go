package ui

import (
	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/rdx/internal/formatter"
	"github.com/desertthunder/rdx/internal/models"
)

var _ list.Item = objectItem{}

// objectItem wraps a [models.Object] to implement [list.Item].
type objectItem struct {
	obj models.Object
}

func (i objectItem) FilterValue() string { return i.obj.Title() }
func (i objectItem) Title() string       { return i.obj.Title() }
func (i objectItem) Description() string {
	return i.obj.Kind().String() + " • " + formatter.Detail(i.obj)
}

func objectItems(objects []models.Object) []list.Item {
	items := make([]list.Item, len(objects))
	for i, obj := range objects {
		items[i] = objectItem{obj: obj}
	}
	return items
}

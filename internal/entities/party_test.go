package entities_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/party-generator/internal/entities"
)

func TestViewStateClone(t *testing.T) {
	t.Run("nil clones to nil", func(t *testing.T) {
		var state *entities.ViewState
		assert.Nil(t, state.Clone())
	})

	t.Run("copy is independent", func(t *testing.T) {
		now := time.Now()
		original := &entities.ViewState{
			PageID: "page_1",
			Classes: []*entities.PartyResult{
				{
					Name:        "Holy Ravager",
					Description: "d",
					ImageID:     "1",
					Classes:     []entities.ClassEntry{{Name: "Cleric", Image: "c.png"}},
				},
			},
			Loading:   true,
			CreatedAt: now,
			UpdatedAt: now,
		}

		clone := original.Clone()
		assert.Equal(t, original, clone)

		clone.Classes[0].Name = "changed"
		clone.Classes[0].Classes[0].Name = "changed"
		clone.Classes = append(clone.Classes, &entities.PartyResult{Name: "extra"})

		assert.Equal(t, "Holy Ravager", original.Classes[0].Name)
		assert.Equal(t, "Cleric", original.Classes[0].Classes[0].Name)
		assert.Len(t, original.Classes, 1)
	})

	t.Run("empty classes stay non-nil", func(t *testing.T) {
		clone := (&entities.ViewState{PageID: "page_2"}).Clone()
		assert.NotNil(t, clone.Classes)
		assert.Empty(t, clone.Classes)
	})
}

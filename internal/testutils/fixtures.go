package testutils

import (
	"time"

	"github.com/KirkDiggler/party-generator/internal/entities"
)

// TestPageID is the default page ID for fixtures
const TestPageID = "page_test_001"

// FighterParty is the single-card party used across tests
func FighterParty() []*entities.PartyResult {
	return []*entities.PartyResult{
		{
			Name:        "Fighter",
			Description: "d",
			ImageID:     "1",
			Classes:     []entities.ClassEntry{{Name: "Sword", Image: "s.png"}},
		},
	}
}

// FullParty is a four-character party shaped like the backend's output
func FullParty() []*entities.PartyResult {
	return []*entities.PartyResult{
		{
			Name:        "Holy Ravager",
			Description: "A zealot who channels divine fury.",
			ImageID:     "5f0c6d1e-1111-4a4a-9b9b-000000000001",
			Classes: []entities.ClassEntry{
				{Name: "Cleric", Image: "/class_icons/cleric_icon.png"},
				{Name: "Barbarian", Image: "/class_icons/barbarian_icon.png"},
				{Name: "Rogue", Image: "/class_icons/rogue_icon.png"},
			},
		},
		{
			Name:        "Primal Arcanewarden",
			Description: "Wild magic bound by old oaths.",
			ImageID:     "5f0c6d1e-1111-4a4a-9b9b-000000000002",
			Classes: []entities.ClassEntry{
				{Name: "Barbarian", Image: "/class_icons/barbarian_icon.png"},
				{Name: "Druid", Image: "/class_icons/druid_icon.png"},
				{Name: "Wizard", Image: "/class_icons/wizard_icon.png"},
			},
		},
		{
			Name:        "Hexblade Minstrel",
			Description: "Songs with a price.",
			ImageID:     "5f0c6d1e-1111-4a4a-9b9b-000000000003",
			Classes: []entities.ClassEntry{
				{Name: "Bard", Image: "/class_icons/bard_icon.png"},
				{Name: "Warlock", Image: "/class_icons/warlock_icon.png"},
				{Name: "Fighter", Image: "/class_icons/fighter_icon.png"},
			},
		},
		{
			Name:        "Stormfist Pilgrim",
			Description: "Walks the storm's edge.",
			ImageID:     "5f0c6d1e-1111-4a4a-9b9b-000000000004",
			Classes: []entities.ClassEntry{
				{Name: "Monk", Image: "/class_icons/monk_icon.png"},
				{Name: "Sorcerer", Image: "/class_icons/sorcerer_icon.png"},
				{Name: "Ranger", Image: "/class_icons/ranger_icon.png"},
			},
		},
	}
}

// FixedTime is the timestamp fixtures are stamped with
func FixedTime() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

// CreateTestViewState creates page state with sensible defaults
func CreateTestViewState(pageID string, now time.Time) *entities.ViewState {
	return &entities.ViewState{
		PageID:    pageID,
		Classes:   []*entities.PartyResult{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

package model

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func frameRef(id int64) *int64 { return &id }

// Reference catalog. IDs are stable: the achievement rules refer to them.
var (
	seedFrames = []AvatarFrame{
		{ID: DefaultFrameID, Name: "Default", ImagePath: "frames/default.png"},
		{ID: 2, Name: "Bronze Laurel", ImagePath: "frames/bronze.png"},
		{ID: 3, Name: "Silver Laurel", ImagePath: "frames/silver.png"},
		{ID: 4, Name: "Gold Laurel", ImagePath: "frames/gold.png"},
		{ID: 5, Name: "Pathfinder", ImagePath: "frames/pathfinder.png"},
	}

	seedQuests = []Quest{
		{ID: 1, Title: "Set up the project locally", Type: QuestTypeBeginner, Difficulty: DifficultyEasy, XPReward: 50},
		{ID: 2, Title: "Report a reproducible issue", Type: QuestTypeBeginner, Difficulty: DifficultyEasy, XPReward: 50},
		{ID: 3, Title: "Review an open pull request", Type: QuestTypeBeginner, Difficulty: DifficultyEasy, XPReward: 75},
		{ID: 4, Title: "Improve the documentation", Type: QuestTypeBeginner, Difficulty: DifficultyMedium, XPReward: 75},
		{ID: 5, Title: "Land your first pull request", Type: QuestTypeBeginner, Difficulty: DifficultyMedium, XPReward: 100},
		{ID: 6, Title: "Ship a small feature", Type: QuestTypeAdvanced, Difficulty: DifficultyMedium, XPReward: 250, ProficiencyReward: 1},
		{ID: 7, Title: "Fix a performance regression", Type: QuestTypeAdvanced, Difficulty: DifficultyHard, XPReward: 400, ProficiencyReward: 2, Role: "Maintainer"},
	}

	seedAchievements = []Achievement{
		{ID: 1, Name: "Hello, Repo", Description: "Set up the project locally", XPReward: 25},
		{ID: 2, Name: "Bug Spotter", Description: "Report your first issue", XPReward: 25},
		{ID: 3, Name: "Second Pair of Eyes", Description: "Review your first pull request", XPReward: 30},
		{ID: 4, Name: "Scribe", Description: "Improve the documentation", XPReward: 30},
		{ID: 5, Name: "Onboarded", Description: "Complete every beginner quest", XPReward: 100, AvatarFrameID: frameRef(5)},
		{ID: 6, Name: "Into the Deep End", Description: "Complete a hard advanced quest", XPReward: 150},
		{ID: 7, Name: "Bronze Podium", Description: "Reach rank 3 on the leaderboard", XPReward: 100, AvatarFrameID: frameRef(2)},
		{ID: 8, Name: "Silver Podium", Description: "Reach rank 2 on the leaderboard", XPReward: 150, AvatarFrameID: frameRef(3)},
		{ID: 9, Name: "Gold Podium", Description: "Reach rank 1 on the leaderboard", XPReward: 200, AvatarFrameID: frameRef(4)},
	}

	seedBadges = []Badge{
		{ID: 1, Name: "Early Adopter", ImagePath: "badges/early-adopter.png"},
		{ID: 2, Name: "Mentor", ImagePath: "badges/mentor.png"},
		{ID: 3, Name: "Bug Squasher", ImagePath: "badges/bug-squasher.png"},
	}
)

// SeedCatalog inserts the reference catalog. Rows that already exist are
// left as they are, so admin edits survive restarts.
func SeedCatalog(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, rows := range []interface{}{&seedFrames, &seedQuests, &seedAchievements, &seedBadges} {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

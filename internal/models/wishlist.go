package models

import "time"

// WishlistEntry links a user profile to a saved listing. The composite
// unique index makes duplicate saves fail at the store, so concurrent
// requests cannot create two entries for the same pair.
type WishlistEntry struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	UserUID    string      `gorm:"size:128;not null;uniqueIndex:idx_wishlist_user_property" json:"-"`
	PropertyID uint        `gorm:"not null;uniqueIndex:idx_wishlist_user_property" json:"property_id"`
	Property   Property    `gorm:"foreignKey:PropertyID" json:"property"`
	User       UserProfile `gorm:"foreignKey:UserUID" json:"-"`
	CreatedAt  time.Time   `json:"created_at"`
}

package course

import "gorm.io/gorm"

// Course represents a compliance training course. Courses, modules and lessons
// are written by the authoring subsystem; this engine only reads them.
type Course struct {
	gorm.Model
	Title       string `json:"title"`
	Description string `json:"description"`
	IsPublished bool   `json:"is_published" gorm:"default:false"`
	IsDeleted   bool   `gorm:"default:false"`
}

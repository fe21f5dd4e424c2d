package course

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Lesson content types
const (
	ContentVideo = "video"
	ContentText  = "text"
	ContentQuiz  = "quiz"
	ContentLab   = "lab_simulation"
)

// Lesson represents a single unit of content within a module. ContentData is a
// tagged payload whose shape depends on ContentType (video URL and duration,
// text body, quiz questions, lab scenario). It is resolved once at the
// authoring boundary; the progress engine never inspects it.
type Lesson struct {
	gorm.Model
	CourseID    uint           `json:"course_id" gorm:"index;not null"`
	ModuleID    uint           `json:"module_id" gorm:"index;not null"`
	Title       string         `json:"title"`
	ContentType string         `json:"content_type" gorm:"default:'text'"` // video, text, quiz, lab_simulation
	ContentData datatypes.JSON `json:"content_data"`
	OrderIndex  int            `json:"order_index" gorm:"default:0"` // Order within module
	IsPublished bool           `json:"is_published" gorm:"default:true"`
	IsDeleted   bool           `gorm:"default:false"`
}

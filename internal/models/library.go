package models

// Book kinds.
const (
	BookKindTextbook  = "textbook"
	BookKindReference = "reference"
)

// Book statuses.
const (
	BookStatusRequired      = "required"
	BookStatusSupplementary = "supplementary"
)

// Book is an entry in the reference library.
type Book struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Title     string  `gorm:"size:255;not null" json:"title"`
	Author    string  `gorm:"size:255" json:"author"`
	CourseID  *uint   `json:"course_id"`
	Category  string  `gorm:"size:128" json:"category"`
	Kind      string  `gorm:"size:32;not null" json:"kind"`
	Status    string  `gorm:"size:32;not null" json:"status"`
	Edition   string  `gorm:"size:64" json:"edition"`
	ISBN      string  `gorm:"size:32" json:"isbn"`
	Format    string  `gorm:"size:16" json:"format"`
	Rating    float64 `json:"rating"`
	Available bool    `json:"available"`
}

// Material is a downloadable workbook item attached to a course.
type Material struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	CourseID uint   `gorm:"not null;index" json:"course_id"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Kind     string `gorm:"size:16" json:"kind"`
	URL      string `gorm:"size:512" json:"url"`
	Filename string `gorm:"size:255" json:"filename"`
}

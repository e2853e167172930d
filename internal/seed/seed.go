// Package seed loads the bundled reference catalog into the repositories.
package seed

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/eduportal-api/internal/models"
)

const schemaName = "catalog.schema.json"

//go:embed catalog.json catalog.schema.json
var files embed.FS

// Catalog mirrors catalog.json.
type Catalog struct {
	Courses     []CourseFixture     `json:"courses"`
	Books       []BookFixture       `json:"books"`
	Assignments []AssignmentFixture `json:"assignments"`
	Submissions []SubmissionFixture `json:"submissions"`
}

// CourseFixture is a course with its roster and workbook materials.
type CourseFixture struct {
	ID          uint              `json:"id"`
	Name        string            `json:"name"`
	Instructor  string            `json:"instructor"`
	Credits     int               `json:"credits"`
	Semester    string            `json:"semester"`
	Description string            `json:"description"`
	Roster      []StudentFixture  `json:"roster"`
	Materials   []MaterialFixture `json:"materials"`
}

// StudentFixture is one roster line.
type StudentFixture struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MaterialFixture is one workbook item.
type MaterialFixture struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Kind     string `json:"kind"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// BookFixture is one library entry.
type BookFixture struct {
	ID        uint    `json:"id"`
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	CourseID  *uint   `json:"course_id"`
	Category  string  `json:"category"`
	Kind      string  `json:"kind"`
	Status    string  `json:"status"`
	Edition   string  `json:"edition"`
	ISBN      string  `json:"isbn"`
	Format    string  `json:"format"`
	Rating    float64 `json:"rating"`
	Available bool    `json:"available"`
}

// AssignmentFixture is one seeded assignment.
type AssignmentFixture struct {
	ID          uint   `json:"id"`
	CourseID    uint   `json:"course_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	MaxMarks    int    `json:"max_marks"`
}

// SubmissionFixture is one seeded submission.
type SubmissionFixture struct {
	AssignmentID uint    `json:"assignment_id"`
	StudentID    string  `json:"student_id"`
	SubmittedOn  string  `json:"submitted_on"`
	TextNote     *string `json:"text_note"`
	Grade        *string `json:"grade"`
	Feedback     *string `json:"feedback"`
}

// Stats reports how many rows a seeding pass wrote.
type Stats struct {
	Courses     int
	Roster      int
	Books       int
	Materials   int
	Assignments int
	Submissions int
}

// Default returns the embedded catalog after schema and reference checks.
func Default() (Catalog, error) {
	data, err := files.ReadFile("catalog.json")
	if err != nil {
		return Catalog{}, err
	}
	return Parse(data)
}

// Parse validates raw catalog JSON against the bundled schema and decodes it.
func Parse(data []byte) (Catalog, error) {
	schema, err := compileSchema()
	if err != nil {
		return Catalog{}, err
	}

	var document interface{}
	if err := json.Unmarshal(data, &document); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if err := schema.Validate(document); err != nil {
		return Catalog{}, fmt.Errorf("catalog does not match schema: %w", err)
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if err := catalog.check(); err != nil {
		return Catalog{}, err
	}

	return catalog, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	raw, err := files.ReadFile(schemaName)
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaName, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("load catalog schema: %w", err)
	}
	return compiler.Compile(schemaName)
}

// check enforces the references the schema cannot express.
func (c Catalog) check() error {
	rosters := make(map[uint]map[string]string, len(c.Courses))
	for _, course := range c.Courses {
		if _, dup := rosters[course.ID]; dup {
			return fmt.Errorf("duplicate course id %d", course.ID)
		}
		students := make(map[string]string, len(course.Roster))
		for _, student := range course.Roster {
			if _, dup := students[student.ID]; dup {
				return fmt.Errorf("student %s listed twice in course %d", student.ID, course.ID)
			}
			students[student.ID] = student.Name
		}
		rosters[course.ID] = students
	}

	assignmentCourse := make(map[uint]uint, len(c.Assignments))
	for _, assignment := range c.Assignments {
		if _, ok := rosters[assignment.CourseID]; !ok {
			return fmt.Errorf("assignment %d references unknown course %d", assignment.ID, assignment.CourseID)
		}
		assignmentCourse[assignment.ID] = assignment.CourseID
	}

	seen := make(map[string]struct{}, len(c.Submissions))
	for _, submission := range c.Submissions {
		courseID, ok := assignmentCourse[submission.AssignmentID]
		if !ok {
			return fmt.Errorf("submission references unknown assignment %d", submission.AssignmentID)
		}
		if _, enrolled := rosters[courseID][submission.StudentID]; !enrolled {
			return fmt.Errorf("student %s is not enrolled in course %d", submission.StudentID, courseID)
		}
		key := fmt.Sprintf("%d/%s", submission.AssignmentID, submission.StudentID)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate submission %s", key)
		}
		seen[key] = struct{}{}
	}

	return nil
}

// Apply writes the catalog in one transaction. Rows that already exist are left untouched.
func Apply(ctx context.Context, db *gorm.DB, catalog Catalog, logger zerolog.Logger) (Stats, error) {
	var stats Stats

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		insert := tx.Clauses(clause.OnConflict{DoNothing: true}).Session(&gorm.Session{})
		names := make(map[uint]map[string]string)

		for _, fixture := range catalog.Courses {
			course := models.Course{
				ID:          fixture.ID,
				Name:        fixture.Name,
				Instructor:  fixture.Instructor,
				Credits:     fixture.Credits,
				Semester:    fixture.Semester,
				Description: fixture.Description,
			}
			if err := insert.Create(&course).Error; err != nil {
				return fmt.Errorf("seed course %d: %w", fixture.ID, err)
			}
			stats.Courses++

			names[fixture.ID] = make(map[string]string, len(fixture.Roster))
			for _, student := range fixture.Roster {
				entry := models.RosterEntry{CourseID: fixture.ID, StudentID: student.ID, StudentName: student.Name}
				if err := insert.Create(&entry).Error; err != nil {
					return fmt.Errorf("seed roster %s: %w", student.ID, err)
				}
				names[fixture.ID][student.ID] = student.Name
				stats.Roster++
			}

			for _, item := range fixture.Materials {
				material := models.Material{
					ID:       item.ID,
					CourseID: fixture.ID,
					Title:    item.Title,
					Kind:     item.Kind,
					URL:      item.URL,
					Filename: item.Filename,
				}
				if err := insert.Create(&material).Error; err != nil {
					return fmt.Errorf("seed material %d: %w", item.ID, err)
				}
				stats.Materials++
			}
		}

		for _, fixture := range catalog.Books {
			book := models.Book{
				ID:        fixture.ID,
				Title:     fixture.Title,
				Author:    fixture.Author,
				CourseID:  fixture.CourseID,
				Category:  fixture.Category,
				Kind:      fixture.Kind,
				Status:    fixture.Status,
				Edition:   fixture.Edition,
				ISBN:      fixture.ISBN,
				Format:    fixture.Format,
				Rating:    fixture.Rating,
				Available: fixture.Available,
			}
			if err := insert.Create(&book).Error; err != nil {
				return fmt.Errorf("seed book %d: %w", fixture.ID, err)
			}
			stats.Books++
		}

		courseOf := make(map[uint]uint, len(catalog.Assignments))
		for _, fixture := range catalog.Assignments {
			due, err := models.ParseDueDate(fixture.DueDate)
			if err != nil {
				return fmt.Errorf("seed assignment %d: %w", fixture.ID, err)
			}
			assignment := models.Assignment{
				ID:          fixture.ID,
				CourseID:    fixture.CourseID,
				Title:       fixture.Title,
				Description: fixture.Description,
				DueDate:     due,
				MaxMarks:    fixture.MaxMarks,
			}
			if err := insert.Create(&assignment).Error; err != nil {
				return fmt.Errorf("seed assignment %d: %w", fixture.ID, err)
			}
			courseOf[fixture.ID] = fixture.CourseID
			stats.Assignments++
		}

		for _, fixture := range catalog.Submissions {
			submittedOn, err := time.ParseInLocation(models.DueDateLayout, fixture.SubmittedOn, time.UTC)
			if err != nil {
				return fmt.Errorf("seed submission %d/%s: %w", fixture.AssignmentID, fixture.StudentID, err)
			}
			submission := models.Submission{
				AssignmentID: fixture.AssignmentID,
				StudentID:    fixture.StudentID,
				StudentName:  names[courseOf[fixture.AssignmentID]][fixture.StudentID],
				SubmittedOn:  submittedOn,
				SubmittedBy:  fixture.StudentID,
				TextNote:     fixture.TextNote,
				Grade:        fixture.Grade,
				Feedback:     fixture.Feedback,
			}
			if err := insert.Create(&submission).Error; err != nil {
				return fmt.Errorf("seed submission %d/%s: %w", fixture.AssignmentID, fixture.StudentID, err)
			}
			stats.Submissions++
		}

		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	logger.Info().
		Int("courses", stats.Courses).
		Int("roster", stats.Roster).
		Int("books", stats.Books).
		Int("assignments", stats.Assignments).
		Int("submissions", stats.Submissions).
		Msg("reference catalog seeded")

	return stats, nil
}

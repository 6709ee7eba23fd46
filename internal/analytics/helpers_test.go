package analytics

import (
	"github.com/student-insight/backend/internal/storage/models"
)

func subject(name string, ca, ese, lab, total float64) models.SubjectRecord {
	return models.SubjectRecord{
		SubjectName:               name,
		ContinuousAssessmentMarks: ca,
		EndSemesterMarks:          ese,
		LabMarks:                  lab,
		TotalMarks:                total,
	}
}

func semester(index int, sgpa float64, subjects ...models.SubjectRecord) models.SemesterRecord {
	return models.SemesterRecord{
		SemesterIndex: index,
		SGPA:          sgpa,
		Subjects:      subjects,
	}
}

func history(semesters ...models.SemesterRecord) models.StudentHistory {
	return models.StudentHistory{StudentID: "student-1", Semesters: semesters}
}

// sampleHistory is the three-semester fixture used across tests: subject A
// totals 80/85/82 (mean 82.33), subject B totals 70/78/74 (mean 74), SGPAs
// 7.0/8.0/7.5.
func sampleHistory() models.StudentHistory {
	return history(
		semester(1, 7.0,
			subject("Algorithms", 32, 40, 8, 80),
			subject("Databases", 28, 36, 6, 70),
		),
		semester(2, 8.0,
			subject("Algorithms", 34, 42, 9, 85),
			subject("Databases", 31, 39, 8, 78),
		),
		semester(3, 7.5,
			subject("Algorithms", 33, 41, 8, 82),
			subject("Databases", 30, 37, 7, 74),
		),
	)
}

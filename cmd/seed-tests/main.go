package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prepkit/ielts-backend/internal/config"
	"github.com/prepkit/ielts-backend/internal/database"
	"github.com/prepkit/ielts-backend/internal/logger"
	"github.com/prepkit/ielts-backend/internal/model"
	"github.com/prepkit/ielts-backend/internal/repository"
	"github.com/prepkit/ielts-backend/internal/service"
	"golang.org/x/crypto/bcrypt"
)

// seedNamespace makes every generated UUID deterministic, so re-running the
// seeder upserts instead of duplicating.
var seedNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("prepkit.io/seed"))

func seedID(name string) uuid.UUID {
	return uuid.NewSHA1(seedNamespace, []byte(name))
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	userRepo := repository.NewUserRepository(pool)
	testRepo := repository.NewTestRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	assignRepo := repository.NewAssignmentRepository(pool)
	testService := service.NewTestService(testRepo, questionRepo, rdb, log)

	fmt.Println("=== Seeding Demo Center, Students and Mock Test ===")

	// ─── Center ────────────────────────────────────────────────────────
	var centerID int
	err = pool.QueryRow(ctx,
		`INSERT INTO centers (name) VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`,
		"PrepKit Demo Center",
	).Scan(&centerID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed center")
	}
	fmt.Printf("Center ready with ID: %d\n", centerID)

	// ─── Students ──────────────────────────────────────────────────────
	hash, err := bcrypt.GenerateFromPassword([]byte("prepkit123"), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash seed password")
	}

	names := []string{
		"Aarav Sharma", "Bao Nguyen", "Carla Mendes", "Deniz Yilmaz", "Elif Kaya",
		"Farhan Ahmed", "Gabriela Silva", "Hana Kim", "Ivan Petrov", "Jia Wang",
	}

	studentIDs := make([]int, 0, len(names))
	for i, name := range names {
		email := fmt.Sprintf("student%d@prepkit.io", i+1)

		var id int
		err := pool.QueryRow(ctx,
			`INSERT INTO users (name, email, password_hash, role, center_id)
			 VALUES ($1, $2, $3, 'user', $4)
			 ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
			 RETURNING id`,
			name, email, string(hash), centerID,
		).Scan(&id)
		if err != nil {
			fmt.Printf("Error seeding student %s: %v\n", email, err)
			continue
		}
		studentIDs = append(studentIDs, id)
	}
	fmt.Printf("Seeded %d students (password: prepkit123)\n", len(studentIDs))
	_ = userRepo // reserved for richer seed flows

	// ─── Test and Questions ────────────────────────────────────────────
	test, questions := buildSampleTest()

	if err := testRepo.Create(ctx, test); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed test")
	}
	for i := range questions {
		if err := questionRepo.Create(ctx, &questions[i]); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed question")
		}
	}
	fmt.Printf("Seeded test '%s' with %d questions\n", test.Title, len(questions))

	// ─── Assignments ───────────────────────────────────────────────────
	assigned := 0
	for _, sid := range studentIDs {
		a := &model.Assignment{
			ID:         seedID(fmt.Sprintf("assignment/%s/%d", test.ID, sid)),
			TestID:     test.ID,
			UserID:     sid,
			Status:     model.AssignmentStatusAssigned,
			AssignedAt: time.Now(),
		}
		if err := assignRepo.Create(ctx, a); err != nil {
			fmt.Printf("Error assigning test to user %d: %v\n", sid, err)
			continue
		}
		assigned++
	}
	fmt.Printf("Assigned test to %d students\n", assigned)

	// ─── Warm Redis ────────────────────────────────────────────────────
	if err := testService.WarmTestCache(ctx, test); err != nil {
		log.Fatal().Err(err).Msg("Failed to warm test cache")
	}
	fmt.Println("Redis cache warmed. Seed complete.")
}

// buildSampleTest assembles an academic mock test with a short listening
// section, a reading passage, and two writing tasks.
func buildSampleTest() (*model.Test, []model.Question) {
	test := &model.Test{
		ID:          seedID("test/academic-mock-1"),
		Title:       "Academic Mock Test 1",
		Description: "Listening, Reading and Writing practice under real timing.",
		Sections: []model.Section{
			{ID: "listening", Name: "Listening", DurationSeconds: 1800, QuestionCount: 10},
			{ID: "reading", Name: "Reading", DurationSeconds: 3600, QuestionCount: 13},
			{ID: "writing", Name: "Writing", DurationSeconds: 3600, QuestionCount: 2},
		},
		Status: model.TestStatusPublished,
	}

	var questions []model.Question
	order := 0
	add := func(q model.Question) {
		order++
		q.TestID = test.ID
		q.OrderNum = order
		q.ID = seedID(fmt.Sprintf("question/%s/%d", test.ID, order))
		questions = append(questions, q)
	}

	// Listening: multiple choice about a campus-life recording.
	listeningPrompts := []struct {
		prompt  string
		options []string
		correct int
	}{
		{"What does the student want to change about her accommodation?", []string{"The location", "The rent", "Her roommate", "The contract length"}, 1},
		{"When does the housing office open on Saturdays?", []string{"8:00", "9:00", "10:00", "It is closed"}, 2},
		{"Which building is closest to the library?", []string{"North Hall", "South Hall", "East Hall", "West Hall"}, 0},
		{"How will the deposit be returned?", []string{"In cash", "By cheque", "By bank transfer", "As rent credit"}, 2},
		{"What must the student bring to the appointment?", []string{"A passport", "A student card", "A bank statement", "A tenancy form"}, 3},
		{"Why was the maintenance request delayed?", []string{"Missing paperwork", "Staff shortage", "A public holiday", "A wrong address"}, 1},
		{"What is included in the weekly rent?", []string{"Electricity only", "Internet only", "All utilities", "No utilities"}, 2},
		{"Where should bicycles be stored?", []string{"In the courtyard", "In the basement", "Outside the gate", "In the hallway"}, 1},
		{"Who should be contacted in an emergency?", []string{"The warden", "The landlord", "Campus security", "The housing office"}, 2},
		{"What is the notice period for moving out?", []string{"One week", "Two weeks", "One month", "Two months"}, 2},
	}
	for _, lq := range listeningPrompts {
		add(model.Question{
			SectionID:     "listening",
			QuestionType:  model.QuestionTypeMultipleChoice,
			Prompt:        lq.prompt,
			Options:       lq.options,
			CorrectAnswer: strconv.Itoa(lq.correct),
		})
	}

	// Reading: true/false/not given plus sentence completion on one passage.
	passage := "The decline of the Aral Sea is one of the most dramatic examples of " +
		"human impact on an inland body of water. Beginning in the 1960s, rivers " +
		"feeding the sea were diverted for cotton irrigation, and within four " +
		"decades the sea had lost over eighty percent of its volume. Recent " +
		"restoration work on the northern basin, however, has raised water levels " +
		"and allowed commercial fishing to resume on a modest scale."

	tfng := []struct {
		prompt  string
		correct model.TriState
	}{
		{"The Aral Sea began shrinking in the 1960s.", model.TriStateTrue},
		{"The diverted rivers were used mainly for rice farming.", model.TriStateFalse},
		{"The sea lost more than 80% of its volume within forty years.", model.TriStateTrue},
		{"The southern basin has fully recovered.", model.TriStateNotGiven},
		{"Fishing has restarted in the northern basin.", model.TriStateTrue},
		{"The restoration project was funded internationally.", model.TriStateNotGiven},
		{"Cotton irrigation had no effect on the sea.", model.TriStateFalse},
		{"Water levels in the northern basin have risen.", model.TriStateTrue},
	}
	for _, rq := range tfng {
		add(model.Question{
			SectionID:     "reading",
			QuestionType:  model.QuestionTypeTrueFalseNG,
			Prompt:        rq.prompt,
			Passage:       passage,
			CorrectAnswer: string(rq.correct),
		})
	}

	blanks := []struct {
		prompt  string
		correct string
	}{
		{"Rivers were diverted for ______ irrigation.", "cotton"},
		{"Restoration work focused on the ______ basin.", "northern"},
		{"Commercial ______ has resumed on a modest scale.", "fishing"},
		{"The decline began in the ______.", "1960s"},
		{"The sea is an example of human impact on an ______ body of water.", "inland"},
	}
	for _, bq := range blanks {
		add(model.Question{
			SectionID:     "reading",
			QuestionType:  model.QuestionTypeFillInBlank,
			Prompt:        bq.prompt,
			Passage:       passage,
			CorrectAnswer: bq.correct,
		})
	}

	// Writing: graded manually, no correct answer.
	add(model.Question{
		SectionID:    "writing",
		QuestionType: model.QuestionTypeWritingTask,
		Prompt: "The chart below shows household water consumption in three " +
			"countries between 1995 and 2020. Summarise the information by " +
			"selecting and reporting the main features.",
		MinWords: 150,
	})
	add(model.Question{
		SectionID:    "writing",
		QuestionType: model.QuestionTypeWritingTask,
		Prompt: "Some people believe that unpaid community service should be a " +
			"compulsory part of secondary school. To what extent do you agree " +
			"or disagree?",
		MinWords: 250,
	})

	return test, questions
}

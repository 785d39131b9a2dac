// Rebuilds stored section marks from student responses.
//
// Needed after importing responses directly into the database or after
// editing correct answers by hand.
//
// Usage: go run scripts/recompute_marks.go [-college <id>]

package main

import (
	"college_survey_backend/internal/config"
	"college_survey_backend/internal/repository"
	"college_survey_backend/internal/service"
	"college_survey_backend/pkg/database"
	"college_survey_backend/pkg/logger"
	"flag"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

func main() {
	collegeID := flag.Uint("college", 0, "only this college (default: all)")
	flag.Parse()

	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("cannot read config: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("cannot parse config: %v", err)
	}

	logger.InitLogger(&cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database, false)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	colleges := repository.NewCollegeRepository(db)
	students := repository.NewStudentRepository(db)
	responses := repository.NewResponseRepository(db)
	results := service.NewResultService(colleges, students, responses, db)

	var ids []uint
	if *collegeID != 0 {
		ids = []uint{*collegeID}
	}
	list, err := colleges.List(ids)
	if err != nil {
		log.Fatalf("cannot list colleges: %v", err)
	}

	for _, c := range list {
		n, err := results.RecomputeCollege(c.ID)
		if err != nil {
			log.Fatalf("recompute %q failed: %v", c.Name, err)
		}
		log.Printf("%s: %d students", c.Name, n)
	}
	log.Println("done")
}

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/mbellini/cinema-scheduler/audit"
	"github.com/mbellini/cinema-scheduler/config"
	"github.com/mbellini/cinema-scheduler/constant"
	"github.com/mbellini/cinema-scheduler/entities"
	"github.com/mbellini/cinema-scheduler/persistence"
	"github.com/mbellini/cinema-scheduler/scheduling"
)

type app struct {
	cfg       *config.Config
	loc       *time.Location
	log       *zap.Logger
	movies    *persistence.MovieStore
	cinemas   *persistence.CinemaStore
	store     *persistence.FileScreeningStore
	scheduler *scheduling.Scheduler
	guard     *scheduling.AuditoriumGuard
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	a := newApp()
	defer a.log.Sync()

	var err error
	switch os.Args[1] {
	case "add-movie":
		err = a.addMovie(os.Args[2:])
	case "add-cinema":
		err = a.addCinema(os.Args[2:])
	case "add-auditorium":
		err = a.addAuditorium(os.Args[2:])
	case "delete-auditorium":
		err = a.deleteAuditorium(os.Args[2:])
	case "schedule":
		err = a.schedule(os.Args[2:])
	case "reschedule":
		err = a.reschedule(os.Args[2:])
	case "remove":
		err = a.remove(os.Args[2:])
	case "list":
		err = a.list(os.Args[2:])
	case "verify":
		err = a.verify()
	case "seed":
		err = a.seed()
	default:
		fmt.Printf("unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
}

func newApp() *app {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}
	loc, err := cfg.Location()
	if err != nil {
		panic(fmt.Sprintf("Failed to resolve timezone: %v", err))
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		panic(fmt.Sprintf("Failed to create data dir: %v", err))
	}

	seq := persistence.NewFileSequence(filepath.Join(cfg.DataDir, constant.CounterFile))
	store := persistence.NewFileScreeningStore(cfg.DataDir, seq, logger)
	movies := persistence.NewMovieStore(cfg.DataDir)
	cinemas := persistence.NewCinemaStore(cfg.DataDir)

	return &app{
		cfg:       cfg,
		loc:       loc,
		log:       logger,
		movies:    movies,
		cinemas:   cinemas,
		store:     store,
		scheduler: scheduling.NewScheduler(store, movies, logger),
		guard:     scheduling.NewAuditoriumGuard(store, clockwork.NewRealClock()),
	}
}

func (a *app) addMovie(args []string) error {
	fs := flag.NewFlagSet("add-movie", flag.ExitOnError)
	title := fs.String("title", "", "Movie title")
	duration := fs.Int("duration", 0, "Runtime in minutes")
	genre := fs.String("genre", "", "Genre")
	fs.Parse(args)

	movie, err := a.movies.Create(entities.Movie{Title: *title, DurationMin: *duration, Genre: *genre})
	if err != nil {
		return err
	}
	fmt.Printf("🎬 Movie %d registered: %s (%d min)\n", movie.ID, movie.Title, movie.DurationMin)
	return nil
}

func (a *app) addCinema(args []string) error {
	fs := flag.NewFlagSet("add-cinema", flag.ExitOnError)
	name := fs.String("name", "", "Cinema name")
	city := fs.String("city", "", "City")
	fs.Parse(args)

	cinema, err := a.cinemas.AddCinema(entities.Cinema{Name: *name, City: *city})
	if err != nil {
		return err
	}
	fmt.Printf("🏠 Cinema %d registered: %s\n", cinema.ID, cinema.Name)
	return nil
}

func (a *app) addAuditorium(args []string) error {
	fs := flag.NewFlagSet("add-auditorium", flag.ExitOnError)
	cinemaID := fs.Int("cinema", 0, "Cinema ID")
	name := fs.String("name", "", "Auditorium name")
	seats := fs.Int("seats", 0, "Seat count")
	fs.Parse(args)

	aud, err := a.cinemas.AddAuditorium(*cinemaID, *name, *seats)
	if err != nil {
		return err
	}
	fmt.Printf("🎭 Auditorium %d added to cinema %d: %s\n", aud.ID, *cinemaID, aud.Name)
	return nil
}

func (a *app) deleteAuditorium(args []string) error {
	fs := flag.NewFlagSet("delete-auditorium", flag.ExitOnError)
	cinemaID := fs.Int("cinema", 0, "Cinema ID")
	auditoriumID := fs.Int("auditorium", 0, "Auditorium ID")
	fs.Parse(args)

	if err := a.guard.CanDelete(*cinemaID, *auditoriumID); err != nil {
		return err
	}
	if err := a.cinemas.RemoveAuditorium(*cinemaID, *auditoriumID); err != nil {
		return err
	}
	fmt.Printf("🗑️ Auditorium %d removed from cinema %d\n", *auditoriumID, *cinemaID)
	return nil
}

func (a *app) schedule(args []string) error {
	fs := flag.NewFlagSet("schedule", flag.ExitOnError)
	cinemaID := fs.Int("cinema", 0, "Cinema ID")
	auditoriumID := fs.Int("auditorium", 0, "Auditorium ID")
	movieID := fs.Int("movie", 0, "Movie ID")
	start := fs.String("start", "", "Local start time, e.g. \"2025-01-15 19:00\"")
	ads := fs.Int("ads", a.cfg.AdsMinutes, "Ads minutes")
	cleaning := fs.Int("cleaning", a.cfg.CleaningMinutes, "Cleaning minutes")
	fs.Parse(args)

	startLocal, err := a.parseStart(*start)
	if err != nil {
		return err
	}
	exists, err := a.cinemas.AuditoriumExists(*cinemaID, *auditoriumID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("auditorium %d is not registered for cinema %d", *auditoriumID, *cinemaID)
	}

	screening, err := a.scheduler.AddScreening(scheduling.AddScreeningRequest{
		CinemaID:        *cinemaID,
		AuditoriumID:    *auditoriumID,
		MovieID:         *movieID,
		Start:           startLocal,
		AdsMinutes:      *ads,
		CleaningMinutes: *cleaning,
	})
	if err != nil {
		return err
	}
	fmt.Printf("🗓️ Screening %d scheduled: cinema %d, auditorium %d, %s\n",
		screening.ID, screening.CinemaID, screening.AuditoriumID,
		screening.StartUTC.In(a.loc).Format(constant.StartTimeLayout))
	return nil
}

func (a *app) reschedule(args []string) error {
	fs := flag.NewFlagSet("reschedule", flag.ExitOnError)
	id := fs.Int("id", 0, "Screening ID")
	start := fs.String("start", "", "New local start time")
	ads := fs.Int("ads", a.cfg.AdsMinutes, "Ads minutes")
	cleaning := fs.Int("cleaning", a.cfg.CleaningMinutes, "Cleaning minutes")
	fs.Parse(args)

	startLocal, err := a.parseStart(*start)
	if err != nil {
		return err
	}
	screening, err := a.scheduler.RescheduleScreening(*id, startLocal, *ads, *cleaning)
	if err != nil {
		return err
	}
	fmt.Printf("🗓️ Screening %d moved to %s\n",
		screening.ID, screening.StartUTC.In(a.loc).Format(constant.StartTimeLayout))
	return nil
}

func (a *app) remove(args []string) error {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	id := fs.Int("id", 0, "Screening ID")
	fs.Parse(args)

	if err := a.scheduler.RemoveScreening(*id); err != nil {
		return err
	}
	fmt.Printf("🗑️ Screening %d removed\n", *id)
	return nil
}

func (a *app) list(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	cinemaID := fs.Int("cinema", 0, "Cinema ID")
	year := fs.Int("year", time.Now().Year(), "Year")
	month := fs.Int("month", int(time.Now().Month()), "Month (1-12)")
	fs.Parse(args)

	list, err := a.scheduler.GetMonth(*cinemaID, *year, time.Month(*month))
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Printf("No screenings for cinema %d in %d-%02d\n", *cinemaID, *year, *month)
		return nil
	}
	fmt.Printf("📅 %d screening(s) for cinema %d in %d-%02d:\n", len(list), *cinemaID, *year, *month)
	for _, s := range list {
		title := fmt.Sprintf("movie %d", s.MovieID)
		end := ""
		if movie, ok, err := a.movies.GetByID(s.MovieID); err == nil && ok {
			title = movie.Title
			end = " - " + s.EndUTC(movie.DurationMin).In(a.loc).Format("15:04")
		}
		fmt.Printf("  #%d  auditorium %d  %s%s  %s\n",
			s.ID, s.AuditoriumID, s.StartUTC.In(a.loc).Format(constant.StartTimeLayout), end, title)
	}
	return nil
}

func (a *app) verify() error {
	violations, err := audit.New(a.cfg.DataDir, a.log).Run()
	if err != nil {
		return err
	}
	if len(violations) == 0 {
		fmt.Println("✅ All screening partitions are consistent")
		return nil
	}
	fmt.Printf("⚠️ Found %d violation(s):\n", len(violations))
	for _, v := range violations {
		fmt.Printf("  %s\n", v)
	}
	return nil
}

func (a *app) seed() error {
	existing, err := a.movies.List()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		fmt.Println("Data dir already has movies, skipping seed")
		return nil
	}
	for _, m := range []entities.Movie{
		{Title: "The Long Reel", DurationMin: 120, Genre: "Drama"},
		{Title: "Midnight Premiere", DurationMin: 95, Genre: "Thriller"},
		{Title: "Cartoon Matinee", DurationMin: 80, Genre: "Animation"},
	} {
		if _, err := a.movies.Create(m); err != nil {
			return err
		}
	}
	for _, name := range []string{"Centro", "Stazione"} {
		cinema, err := a.cinemas.AddCinema(entities.Cinema{Name: name})
		if err != nil {
			return err
		}
		for i := 1; i <= 2; i++ {
			if _, err := a.cinemas.AddAuditorium(cinema.ID, fmt.Sprintf("Sala %d", i), 120); err != nil {
				return err
			}
		}
	}
	fmt.Println("🌱 Seed data written")
	return nil
}

func (a *app) parseStart(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("missing -start, expected format %q", constant.StartTimeLayout)
	}
	t, err := time.ParseInLocation(constant.StartTimeLayout, value, a.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start time %q, expected format %q", value, constant.StartTimeLayout)
	}
	return t, nil
}

func usage() {
	fmt.Println(`Usage: cinema-scheduler <command> [flags]

Commands:
  add-movie          Register a movie (-title, -duration, -genre)
  add-cinema         Register a cinema (-name, -city)
  add-auditorium     Add an auditorium (-cinema, -name, -seats)
  delete-auditorium  Remove an auditorium if it has no future screenings (-cinema, -auditorium)
  schedule           Schedule a screening (-cinema, -auditorium, -movie, -start, -ads, -cleaning)
  reschedule         Move a screening (-id, -start, -ads, -cleaning)
  remove             Remove a screening (-id)
  list               List a cinema's screenings for a month (-cinema, -year, -month)
  verify             Check partition files for integrity violations
  seed               Write fixture movies and cinemas into an empty data dir`)
}

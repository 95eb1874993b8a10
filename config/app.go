package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve in minimal images

	"github.com/yoockh/mentorloop/internal/availability"
	"github.com/yoockh/mentorloop/internal/lifecycle"
	"github.com/yoockh/mentorloop/internal/services"
)

// DefaultTimeZone is where working hours, slots and event times are expressed.
const DefaultTimeZone = "Asia/Kolkata"

type SweepConfig struct {
	Interval       time.Duration
	ScheduledGrace time.Duration
	ActiveGrace    time.Duration
	Workers        int
	Batch          int
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type App struct {
	Port        string
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	CORSOrigins []string

	Location        *time.Location
	WorkingHours    availability.WorkingHours
	Slots           availability.Options
	SlotCacheTTL    time.Duration
	CalendarTimeout time.Duration
	BadgeRules      []lifecycle.BadgeRule

	Sweep  SweepConfig
	Google GoogleConfig
}

// Scheduling returns the settings shared by availability and booking.
func (a *App) Scheduling() services.SchedulingConfig {
	return services.SchedulingConfig{
		Location:        a.Location,
		WorkingHours:    a.WorkingHours,
		Slots:           a.Slots,
		CalendarTimeout: a.CalendarTimeout,
		SlotCacheTTL:    a.SlotCacheTTL,
	}
}

// LoadApp reads the process configuration from the environment. Every
// malformed value is reported, not just the first.
func LoadApp() (*App, error) {
	var errs []error
	e := envReader{errs: &errs}

	a := &App{
		Port:        e.str("PORT", "8080"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTIssuer:   os.Getenv("JWT_ISSUER"),
		JWTAudience: os.Getenv("JWT_AUDIENCE"),
		CORSOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),

		Slots: availability.Options{
			HorizonDays: e.number("SLOT_HORIZON_DAYS", availability.DefaultHorizonDays),
			SlotLength:  e.duration("SLOT_LENGTH", availability.DefaultSlotLength),
			MaxResults:  e.number("SLOT_MAX_RESULTS", availability.DefaultMaxResults),
		},
		SlotCacheTTL:    e.duration("SLOT_CACHE_TTL", 2*time.Minute),
		CalendarTimeout: e.duration("CALENDAR_TIMEOUT", 10*time.Second),

		Sweep: SweepConfig{
			Interval:       e.duration("SWEEP_INTERVAL", 5*time.Minute),
			ScheduledGrace: e.duration("SWEEP_SCHEDULED_GRACE", time.Hour),
			ActiveGrace:    e.duration("SWEEP_ACTIVE_GRACE", time.Hour),
			Workers:        e.number("SWEEP_WORKERS", 4),
			Batch:          e.number("SWEEP_BATCH", 100),
		},
		Google: GoogleConfig{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URI"),
		},
	}

	tz := e.str("TIMEZONE", DefaultTimeZone)
	loc, err := time.LoadLocation(tz)
	if err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE: %w", err))
		loc = time.UTC
	}
	a.Location = loc

	wh := availability.DefaultWorkingHours
	start, end := os.Getenv("WORK_DAY_START"), os.Getenv("WORK_DAY_END")
	if start != "" || end != "" {
		if start == "" {
			start = formatClock(wh.Start)
		}
		if end == "" {
			end = formatClock(wh.End)
		}
		parsed, err := availability.ParseWorkingHours(start, end)
		if err != nil {
			errs = append(errs, fmt.Errorf("WORK_DAY_START/WORK_DAY_END: %w", err))
		} else {
			wh = parsed
		}
	}
	a.WorkingHours = wh

	a.BadgeRules = lifecycle.DefaultBadgeRules
	if path := os.Getenv("BADGE_RULES_FILE"); path != "" {
		rules, err := LoadBadgeRules(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("BADGE_RULES_FILE: %w", err))
		} else {
			a.BadgeRules = rules
		}
	}

	if a.Sweep.Interval <= 0 {
		errs = append(errs, errors.New("SWEEP_INTERVAL must be positive"))
	}
	if a.Sweep.Workers <= 0 || a.Sweep.Batch <= 0 {
		errs = append(errs, errors.New("SWEEP_WORKERS and SWEEP_BATCH must be positive"))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return a, nil
}

type envReader struct {
	errs *[]error
}

func (e envReader) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (e envReader) number(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (e envReader) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func formatClock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/fitportal/internal/dashboard"
	"github.com/2beens/fitportal/internal/portal"
	"github.com/2beens/fitportal/internal/storage"
)

var errUsage = errors.New("usage")

type app struct {
	portal *portal.Portal
	out    io.Writer
	errOut io.Writer
	now    func() time.Time
}

type command struct {
	name      string
	args      string
	help      string
	needsUser bool
	run       func(ctx context.Context, a *app, user *portal.User, args []string) error
}

var commands = []command{
	{name: "register", args: "-name N -email E -password P [-goal G] [-level L] [-plan P]", help: "create an account", run: cmdRegister},
	{name: "login", args: "-email E -password P", help: "log in", run: cmdLogin},
	{name: "logout", help: "log out", run: cmdLogout},
	{name: "whoami", help: "show the logged in user", needsUser: true, run: cmdWhoami},
	{name: "checkin", args: "[-note N]", help: "check in for today", needsUser: true, run: cmdCheckin},
	{name: "checkins", args: "[-limit N]", help: "list recent check-ins", needsUser: true, run: cmdCheckins},
	{name: "workouts", args: "[query]", help: "list or search workouts", needsUser: true, run: cmdWorkouts},
	{name: "workout-add", args: "-title T -day D -ex name[:sets[:reps[:rest]]]...", help: "add a workout", needsUser: true, run: cmdWorkoutAdd},
	{name: "workout-rm", args: "<id>", help: "remove a workout", needsUser: true, run: cmdWorkoutRemove},
	{name: "weight-add", args: "-weight W [-date D] [-chest C] [-waist W] [-hip H] [-arm A]", help: "record a measurement", needsUser: true, run: cmdWeightAdd},
	{name: "weights", help: "measurement history and trend", needsUser: true, run: cmdWeights},
	{name: "event-add", args: "-date D [-time HH:MM] -title T [-note N]", help: "add an event", needsUser: true, run: cmdEventAdd},
	{name: "event-rm", args: "<id>", help: "remove an event", needsUser: true, run: cmdEventRemove},
	{name: "events", args: "[-all]", help: "list upcoming events", needsUser: true, run: cmdEvents},
	{name: "plan", args: "[change <name> | cancel | reactivate]", help: "show or manage the plan", needsUser: true, run: cmdPlan},
	{name: "offer-plan", args: "<name>", help: "preselect a plan for the next registration", run: cmdOfferPlan},
	{name: "profile", args: "[-name N] [-email E] [-goal G] [-level L]", help: "show or edit the profile", needsUser: true, run: cmdProfile},
	{name: "dashboard", help: "home screen summary", needsUser: true, run: cmdDashboard},
	{name: "reset", args: "-yes", help: "delete all users and the session", run: cmdReset},
}

func printCommands(w io.Writer) {
	fmt.Fprintln(w, "commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-12s %s\n", c.name, c.help)
		if c.args != "" {
			fmt.Fprintf(w, "  %-12s   %s\n", "", c.args)
		}
	}
}

// run executes one command and returns the process exit code.
func (a *app) run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		printCommands(a.errOut)
		return 2
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
			break
		}
	}
	if cmd == nil {
		fmt.Fprintf(a.errOut, "unknown command %q\n", args[0])
		printCommands(a.errOut)
		return 2
	}

	var user *portal.User
	if cmd.needsUser {
		var err error
		if user, err = a.portal.CurrentUser(ctx); err != nil {
			fmt.Fprintln(a.errOut, describeError(err))
			return 1
		}
	}

	if err := cmd.run(ctx, a, user, args[1:]); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(a.errOut, "usage: portal %s %s\n", cmd.name, cmd.args)
			return 2
		}
		fmt.Fprintln(a.errOut, describeError(err))
		return 1
	}
	return 0
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

func (a *app) today() string {
	return a.now().Format(portal.DateLayout)
}

// describeError turns domain errors into messages for the terminal.
func describeError(err error) string {
	var verr *portal.ValidationError
	var nfErr *portal.NotFoundError
	switch {
	case errors.As(err, &verr):
		fields := make([]string, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, fmt.Sprintf("%s (%s)", f.Field, f.Rule))
		}
		return "invalid input: " + strings.Join(fields, ", ")
	case errors.As(err, &nfErr):
		return fmt.Sprintf("%s %s not found", nfErr.Kind, nfErr.ID)
	case errors.Is(err, portal.ErrDuplicateEmail):
		return "this email is already registered"
	case errors.Is(err, portal.ErrDuplicateCheckin):
		return "already checked in on that day"
	case errors.Is(err, portal.ErrInvalidCredentials):
		return "invalid email or password"
	case errors.Is(err, portal.ErrNotLoggedIn):
		return "not logged in, use: portal login -email E -password P"
	case errors.Is(err, storage.ErrStorageQuotaExceeded):
		return "storage is full, nothing was saved"
	default:
		return "error: " + err.Error()
	}
}

func cmdRegister(ctx context.Context, a *app, _ *portal.User, args []string) error {
	fs := a.flags("register")
	var params portal.CreateUserParams
	var goal, level string
	fs.StringVar(&params.Name, "name", "", "full name")
	fs.StringVar(&params.Email, "email", "", "email")
	fs.StringVar(&params.Password, "password", "", "password")
	fs.StringVar(&goal, "goal", "", "lose_weight | gain_muscle | conditioning | health")
	fs.StringVar(&level, "level", "", "beginner | intermediate | advanced")
	fs.StringVar(&params.Plan, "plan", "", "plan name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	params.Goal = portal.Goal(goal)
	params.Level = portal.Level(level)

	user, err := a.portal.Register(ctx, params, a.now())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "account created for %s (%s plan), you can log in now\n", user.Email, user.Plan.Name)
	return nil
}

func cmdLogin(ctx context.Context, a *app, _ *portal.User, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := a.portal.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "welcome, %s\n", user.Name)
	return nil
}

func cmdLogout(ctx context.Context, a *app, _ *portal.User, _ []string) error {
	if err := a.portal.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "logged out")
	return nil
}

func cmdWhoami(_ context.Context, a *app, user *portal.User, _ []string) error {
	fmt.Fprintf(a.out, "%s <%s>\n", user.Name, user.Email)
	fmt.Fprintf(a.out, "id: %s, member since %s\n", user.ID, user.MemberSince)
	return nil
}

func cmdCheckin(ctx context.Context, a *app, user *portal.User, args []string) error {
	fs := a.flags("checkin")
	note := fs.String("note", "", "optional note")
	if err := fs.Parse(args); err != nil {
		return err
	}

	checkin, err := a.portal.Checkins.CheckIn(ctx, user, a.now(), *note)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "checked in on %s\n", checkin.Date)
	return nil
}

func cmdCheckins(_ context.Context, a *app, user *portal.User, args []string) error {
	fs := a.flags("checkins")
	limit := fs.Int("limit", dashboard.RecentCheckinsLimit, "how many to show (0 for all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	checkins := dashboard.RecentCheckins(user, *limit)
	if len(checkins) == 0 {
		fmt.Fprintln(a.out, "no check-ins yet")
		return nil
	}
	for _, c := range checkins {
		if c.Note != "" {
			fmt.Fprintf(a.out, "%s  %s\n", c.Date, c.Note)
			continue
		}
		fmt.Fprintln(a.out, c.Date)
	}
	return nil
}

func cmdWorkouts(_ context.Context, a *app, user *portal.User, args []string) error {
	workouts := dashboard.SearchWorkouts(user, strings.Join(args, " "))
	if len(workouts) == 0 {
		fmt.Fprintln(a.out, "no workouts found")
		return nil
	}
	for _, w := range workouts {
		fmt.Fprintf(a.out, "%s  %-9s  %s (%d exercises)\n", w.ID, w.Weekday, w.Title, len(w.Exercises))
		for _, e := range w.Exercises {
			fmt.Fprintf(a.out, "    %s: %d x %s, rest %s\n", e.Name, e.Sets, e.Reps, e.Rest)
		}
	}
	return nil
}

// exerciseFlags collects repeated -ex values in the form name[:sets[:reps[:rest]]].
type exerciseFlags []portal.Exercise

func (e *exerciseFlags) String() string {
	names := make([]string, 0, len(*e))
	for _, ex := range *e {
		names = append(names, ex.Name)
	}
	return strings.Join(names, ", ")
}

func (e *exerciseFlags) Set(value string) error {
	parts := strings.Split(value, ":")
	if len(parts) > 4 {
		return fmt.Errorf("expected name[:sets[:reps[:rest]]], got %q", value)
	}
	ex := portal.Exercise{Name: parts[0], Sets: 3, Reps: "10-12", Rest: "60s"}
	if len(parts) > 1 {
		sets, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("sets of %q: %w", parts[0], err)
		}
		ex.Sets = sets
	}
	if len(parts) > 2 {
		ex.Reps = parts[2]
	}
	if len(parts) > 3 {
		ex.Rest = parts[3]
	}
	*e = append(*e, ex)
	return nil
}

func parseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 6 {
		return time.Weekday(n), nil
	}
	if len(s) >= 3 {
		for d := time.Sunday; d <= time.Saturday; d++ {
			if strings.HasPrefix(strings.ToLower(d.String()), s) {
				return d, nil
			}
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

func cmdWorkoutAdd(ctx context.Context, a *app, user *portal.User, args []string) error {
	fs := a.flags("workout-add")
	title := fs.String("title", "", "workout title")
	day := fs.String("day", a.now().Weekday().String(), "weekday name or 0-6 (0 is Sunday)")
	var exercises exerciseFlags
	fs.Var(&exercises, "ex", "exercise as name[:sets[:reps[:rest]]], repeatable")
	if err := fs.Parse(args); err != nil {
		return err
	}
	weekday, err := parseWeekday(*day)
	if err != nil {
		return err
	}

	workout, err := a.portal.Workouts.Add(ctx, user, portal.Workout{
		Title:     *title,
		Weekday:   weekday,
		Exercises: exercises,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "workout %s added (%s)\n", workout.ID, workout.Title)
	return nil
}

func cmdWorkoutRemove(ctx context.Context, a *app, user *portal.User, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := a.portal.Workouts.Remove(ctx, user, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "workout removed")
	return nil
}

// optionalFloat is a float flag that stays nil unless given.
type optionalFloat struct {
	value *float64
}

func (o *optionalFloat) String() string {
	if o.value == nil {
		return ""
	}
	return strconv.FormatFloat(*o.value, 'f', -1, 64)
}

func (o *optionalFloat) Set(s string) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	o.value = &f
	return nil
}

func cmdWeightAdd(ctx context.Context, a *app, user *portal.User, args []string) error {
	fs := a.flags("weight-add")
	date := fs.String("date", a.today(), "date (YYYY-MM-DD)")
	weight := fs.Float64("weight", 0, "weight in kg")
	var chest, waist, hip, arm optionalFloat
	fs.Var(&chest, "chest", "chest in cm")
	fs.Var(&waist, "waist", "waist in cm")
	fs.Var(&hip, "hip", "hip in cm")
	fs.Var(&arm, "arm", "arm in cm")
	if err := fs.Parse(args); err != nil {
		return err
	}

	m, err := a.portal.Measurements.Add(ctx, user, portal.Measurement{
		Date:   *date,
		Weight: *weight,
		Chest:  chest.value,
		Waist:  waist.value,
		Hip:    hip.value,
		Arm:    arm.value,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "recorded %.1f kg on %s\n", m.Weight, m.Date)
	return nil
}

const sparks = "▁▂▃▄▅▆▇█"

func cmdWeights(_ context.Context, a *app, user *portal.User, _ []string) error {
	history := dashboard.MeasurementHistory(user)
	if len(history) == 0 {
		fmt.Fprintln(a.out, "no measurements yet")
		return nil
	}

	series := dashboard.ReduceSeries(user.Measurements, dashboard.DefaultMaxPoints)
	if series.Sufficient() {
		runes := []rune(sparks)
		var line strings.Builder
		for _, level := range series.Levels(len(runes)) {
			line.WriteRune(runes[level])
		}
		lower, upper, _ := series.Bounds()
		fmt.Fprintf(a.out, "trend %s  (%.1f - %.1f kg)\n", line.String(), lower, upper)
	} else {
		fmt.Fprintln(a.out, "record at least 2 weights to see the trend")
	}

	for _, m := range history {
		fmt.Fprintf(a.out, "%s  %s  %.1f kg%s\n", m.ID, m.Date, m.Weight, bodyMeasures(m))
	}
	return nil
}

func bodyMeasures(m portal.Measurement) string {
	var parts []string
	for _, f := range []struct {
		name  string
		value *float64
	}{{"chest", m.Chest}, {"waist", m.Waist}, {"hip", m.Hip}, {"arm", m.Arm}} {
		if f.value != nil {
			parts = append(parts, fmt.Sprintf("%s %.1f", f.name, *f.value))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "  (" + strings.Join(parts, ", ") + ")"
}

func cmdEventAdd(ctx context.Context, a *app, user *portal.User, args []string) error {
	fs := a.flags("event-add")
	var event portal.Event
	fs.StringVar(&event.Date, "date", a.today(), "date (YYYY-MM-DD)")
	fs.StringVar(&event.Time, "time", "", "time (HH:MM)")
	fs.StringVar(&event.Title, "title", "", "title")
	fs.StringVar(&event.Note, "note", "", "optional note")
	if err := fs.Parse(args); err != nil {
		return err
	}

	event, err := a.portal.Events.Add(ctx, user, event)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "event %s added for %s\n", event.ID, event.SortKey())
	return nil
}

func cmdEventRemove(ctx context.Context, a *app, user *portal.User, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := a.portal.Events.Remove(ctx, user, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "event removed")
	return nil
}

func cmdEvents(_ context.Context, a *app, user *portal.User, args []string) error {
	fs := a.flags("events")
	all := fs.Bool("all", false, "include past events")
	if err := fs.Parse(args); err != nil {
		return err
	}

	events := user.Events
	if !*all {
		events = dashboard.UpcomingEvents(user, a.now(), 0)
	}
	if len(events) == 0 {
		fmt.Fprintln(a.out, "no events")
		return nil
	}
	for _, e := range events {
		printEvent(a.out, e)
	}
	return nil
}

func printEvent(w io.Writer, e portal.Event) {
	fmt.Fprintf(w, "%s  %-16s  %s\n", e.ID, e.SortKey(), e.Title)
	if e.Note != "" {
		fmt.Fprintf(w, "    %s\n", e.Note)
	}
}

func cmdPlan(ctx context.Context, a *app, user *portal.User, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(a.out, "current plan: %s (%.2f), %s\n", user.Plan.Name, user.Plan.Price, user.Plan.Status)
		for _, p := range portal.Catalog() {
			fmt.Fprintf(a.out, "  %-10s %8.2f  %s\n", p.Name, p.Price, p.Description)
		}
		return nil
	}

	var err error
	switch {
	case args[0] == "change" && len(args) == 2:
		err = a.portal.Plans.Change(ctx, user, args[1])
	case args[0] == "cancel" && len(args) == 1:
		err = a.portal.Plans.Cancel(ctx, user)
	case args[0] == "reactivate" && len(args) == 1:
		err = a.portal.Plans.Reactivate(ctx, user)
	default:
		return errUsage
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "plan %s is %s\n", user.Plan.Name, user.Plan.Status)
	return nil
}

func cmdOfferPlan(ctx context.Context, a *app, _ *portal.User, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	plan, ok := portal.FindPlan(args[0])
	if !ok {
		return fmt.Errorf("unknown plan %q", args[0])
	}
	if err := a.portal.SelectedPlans.Offer(ctx, plan.Name, plan.Price); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s plan selected, register to use it\n", plan.Name)
	return nil
}

func cmdProfile(ctx context.Context, a *app, user *portal.User, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(a.out, "name:  %s\nemail: %s\ngoal:  %s\nlevel: %s\nplan:  %s (%s)\n",
			user.Name, user.Email, user.Goal, user.Level, user.Plan.Name, user.Plan.Status)
		return nil
	}

	fs := a.flags("profile")
	update := portal.ProfileUpdate{
		Name:  user.Name,
		Email: user.Email,
		Goal:  user.Goal,
		Level: user.Level,
	}
	goal, level := string(update.Goal), string(update.Level)
	fs.StringVar(&update.Name, "name", update.Name, "full name")
	fs.StringVar(&update.Email, "email", update.Email, "email")
	fs.StringVar(&goal, "goal", goal, "lose_weight | gain_muscle | conditioning | health")
	fs.StringVar(&level, "level", level, "beginner | intermediate | advanced")
	if err := fs.Parse(args); err != nil {
		return err
	}
	update.Goal = portal.Goal(goal)
	update.Level = portal.Level(level)

	if err := a.portal.Profiles.Update(ctx, user, update); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "profile updated")
	return nil
}

func cmdDashboard(_ context.Context, a *app, user *portal.User, _ []string) error {
	now := a.now()
	s := dashboard.Build(user, now)

	fmt.Fprintf(a.out, "%s  |  %s plan (%s)\n", s.Name, s.Plan.Name, s.Plan.Status)
	fmt.Fprintf(a.out, "check-ins (30 days): %d\n", s.CheckinsLast30)
	today := "-"
	if s.CheckedInToday {
		today = "done"
	}
	fmt.Fprintf(a.out, "today: %s\n", today)
	fmt.Fprintf(a.out, "workouts: %d\n", s.WorkoutCount)
	if s.LatestWeight != nil {
		fmt.Fprintf(a.out, "last weight: %.1f kg\n", *s.LatestWeight)
	} else {
		fmt.Fprintln(a.out, "last weight: -")
	}
	if s.TodaysWorkout != nil {
		fmt.Fprintf(a.out, "today's workout: %s\n", s.TodaysWorkout.Title)
	}
	if s.NextEvent != nil {
		fmt.Fprintf(a.out, "next event: %s at %s\n", s.NextEvent.Title, s.NextEvent.SortKey())
	}

	fmt.Fprintln(a.out, "\nrecent check-ins:")
	if len(s.RecentCheckins) == 0 {
		fmt.Fprintln(a.out, "  none")
	}
	for _, c := range s.RecentCheckins {
		fmt.Fprintf(a.out, "  %s\n", c.Date)
	}

	fmt.Fprintln(a.out, "\nupcoming events:")
	if len(s.UpcomingEvents) == 0 {
		fmt.Fprintln(a.out, "  none")
	}
	for _, e := range s.UpcomingEvents {
		fmt.Fprintf(a.out, "  %-16s  %s\n", e.SortKey(), e.Title)
	}
	return nil
}

func cmdReset(ctx context.Context, a *app, _ *portal.User, args []string) error {
	fs := a.flags("reset")
	yes := fs.Bool("yes", false, "confirm deleting all data")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*yes {
		return errUsage
	}
	if err := a.portal.ResetAll(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "all portal data removed")
	return nil
}

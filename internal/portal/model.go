package portal

import "time"

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Goal string

const (
	GoalLoseWeight   Goal = "lose_weight"
	GoalGainMuscle   Goal = "gain_muscle"
	GoalConditioning Goal = "conditioning"
	GoalHealth       Goal = "health"
)

type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

type PlanStatus string

const (
	PlanStatusActive    PlanStatus = "Active"
	PlanStatusCancelled PlanStatus = "Cancelled"
)

type Plan struct {
	Name        string     `json:"name"`
	Price       float64    `json:"price"`
	Description string     `json:"description"`
	Status      PlanStatus `json:"status"`
}

type Checkin struct {
	ID   string `json:"id"`
	Date string `json:"date" validate:"required,isodate"`
	Note string `json:"note,omitempty" validate:"max=280"`
}

type Exercise struct {
	Name string `json:"name" validate:"required,max=80"`
	Sets int    `json:"sets" validate:"gt=0,lte=20"`
	Reps string `json:"reps" validate:"required,reps"`
	Rest string `json:"rest" validate:"required,rest"`
}

type Workout struct {
	ID        string       `json:"id"`
	Title     string       `json:"title" validate:"required,max=80"`
	Weekday   time.Weekday `json:"weekday" validate:"min=0,max=6"`
	Exercises []Exercise   `json:"exercises" validate:"required,min=1,dive"`
}

// Measurement is a body measurement entry. Only Weight is mandatory.
type Measurement struct {
	ID     string   `json:"id"`
	Date   string   `json:"date" validate:"required,isodate"`
	Weight float64  `json:"weight" validate:"gt=0,finite"`
	Chest  *float64 `json:"chest,omitempty" validate:"omitempty,gt=0,finite"`
	Waist  *float64 `json:"waist,omitempty" validate:"omitempty,gt=0,finite"`
	Hip    *float64 `json:"hip,omitempty" validate:"omitempty,gt=0,finite"`
	Arm    *float64 `json:"arm,omitempty" validate:"omitempty,gt=0,finite"`
}

type Event struct {
	ID    string `json:"id"`
	Date  string `json:"date" validate:"required,isodate"`
	Time  string `json:"time,omitempty" validate:"omitempty,hhmm"`
	Title string `json:"title" validate:"required,max=120"`
	Note  string `json:"note,omitempty" validate:"max=280"`
}

// SortKey orders events by date, then time. Events without a time come first
// on their day.
func (e Event) SortKey() string {
	if e.Time == "" {
		return e.Date
	}
	return e.Date + " " + e.Time
}

type User struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"passwordHash"`
	Goal         Goal          `json:"goal,omitempty"`
	Level        Level         `json:"level,omitempty"`
	Plan         Plan          `json:"plan"`
	MemberSince  string        `json:"memberSince"`
	Checkins     []Checkin     `json:"checkins"`
	Workouts     []Workout     `json:"workouts"`
	Measurements []Measurement `json:"measurements"`
	Events       []Event       `json:"events"`
}

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	c := *u
	if u.Checkins != nil {
		c.Checkins = append(make([]Checkin, 0, len(u.Checkins)), u.Checkins...)
	}
	if u.Workouts != nil {
		c.Workouts = make([]Workout, len(u.Workouts))
		for i, w := range u.Workouts {
			c.Workouts[i] = w.clone()
		}
	}
	if u.Measurements != nil {
		c.Measurements = make([]Measurement, len(u.Measurements))
		for i, m := range u.Measurements {
			c.Measurements[i] = m.clone()
		}
	}
	if u.Events != nil {
		c.Events = append(make([]Event, 0, len(u.Events)), u.Events...)
	}
	return &c
}

func (w Workout) clone() Workout {
	if w.Exercises != nil {
		w.Exercises = append(make([]Exercise, 0, len(w.Exercises)), w.Exercises...)
	}
	return w
}

func (m Measurement) clone() Measurement {
	m.Chest = cloneFloat(m.Chest)
	m.Waist = cloneFloat(m.Waist)
	m.Hip = cloneFloat(m.Hip)
	m.Arm = cloneFloat(m.Arm)
	return m
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

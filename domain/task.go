package domain

import "time"

// Rarity grades how hard a catalog task is to come by.
type Rarity int

const (
	RarityNormal Rarity = 1
	RaritySilver Rarity = 2
	RarityGold   Rarity = 3
)

func (r Rarity) String() string {
	switch r {
	case RaritySilver:
		return "silver"
	case RarityGold:
		return "gold"
	default:
		return "normal"
	}
}

// TaskCategory groups catalog tasks. A category cannot be deleted while
// tasks still reference it.
type TaskCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Task is a reusable catalog template describing a sustainability action,
// maintained by gamekeepers. Instances of it are tracked per profile.
type Task struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Points      int           `json:"points"`
	TimeToRepeat time.Duration `json:"time_to_repeat"`
	CategoryID  string        `json:"category_id"`
	Rarity      Rarity        `json:"rarity"`

	// Bomb tasks carry a completion deadline relative to acceptance.
	// IsBomb and BombTimeLimit must be set together.
	IsBomb        bool          `json:"is_bomb"`
	BombTimeLimit time.Duration `json:"bomb_time_limit,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the catalog invariants before the task is persisted.
func (t *Task) Validate() error {
	if t == nil {
		return ErrInvalidPayload
	}
	if t.Title == "" {
		return Validationf("task title is required")
	}
	if t.Points <= 0 {
		return Validationf("task points must be positive, got %d", t.Points)
	}
	if t.TimeToRepeat < 0 {
		return Validationf("task repeat cooldown cannot be negative")
	}
	if t.CategoryID == "" {
		return Validationf("task category is required")
	}
	switch t.Rarity {
	case RarityNormal, RaritySilver, RarityGold:
	default:
		return Validationf("unknown task rarity %d", t.Rarity)
	}
	if t.IsBomb && t.BombTimeLimit <= 0 {
		return Validationf("bomb task requires a positive time limit")
	}
	if !t.IsBomb && t.BombTimeLimit != 0 {
		return Validationf("bomb time limit set on a non-bomb task")
	}
	return nil
}

// BombDeadline returns the moment an instance accepted at the given time
// explodes. Only meaningful for bomb tasks.
func (t *Task) BombDeadline(accepted time.Time) time.Time {
	return accepted.Add(t.BombTimeLimit)
}

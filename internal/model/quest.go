package model

import (
	"fmt"
	"slices"
	"strings"
)

// Status is a quest lifecycle state. It decides which list a quest appears in.
type Status string

// Quest statuses.
const (
	StatusActive    Status = "active"
	StatusAvailable Status = "available"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusInactive  Status = "inactive"
)

// Statuses lists every status in display order.
var Statuses = []Status{
	StatusActive,
	StatusAvailable,
	StatusCompleted,
	StatusFailed,
	StatusInactive,
}

// ParseStatus validates a status string. The legacy value "hidden" maps to inactive.
func ParseStatus(s string) (Status, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "hidden" {
		return StatusInactive, nil
	}
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown quest status %q", s)
}

// Image display modes for the quest giver.
const (
	ImageActor = "actor"
	ImageToken = "token"
)

// DefaultQuestName is used when a quest is saved without a name.
const DefaultQuestName = "New Quest"

// GiverAbstract marks a giver that is not backed by another record.
const GiverAbstract = "abstract"

// Quest is the payload persisted on a journal entry under the module flag.
// The quest identifier is the entry ID and is not part of the payload.
type Quest struct {
	Giver       *string  `json:"giver" yaml:"giver,omitempty"`
	Name        string   `json:"name" yaml:"name"`
	Status      Status   `json:"status" yaml:"status"`
	Description string   `json:"description" yaml:"description,omitempty"`
	GMNotes     string   `json:"gmnotes" yaml:"gmnotes,omitempty"`
	Image       string   `json:"image" yaml:"image"`
	GiverName   string   `json:"giverName" yaml:"giverName,omitempty"`
	GiverImgPos string   `json:"giverImgPos" yaml:"giverImgPos,omitempty"`
	SplashPos   string   `json:"splashPos" yaml:"splashPos,omitempty"`
	Splash      string   `json:"splash" yaml:"splash,omitempty"`
	Parent      *string  `json:"parent" yaml:"parent,omitempty"`
	Subquests   []string `json:"subquests" yaml:"subquests"`
	Tasks       []Task   `json:"tasks" yaml:"tasks"`
	Rewards     []Reward `json:"rewards" yaml:"rewards"`
}

// NewQuest returns a quest payload with defaults applied.
func NewQuest(name string) Quest {
	q := Quest{
		Name:        name,
		Status:      StatusInactive,
		Image:       ImageActor,
		GiverImgPos: "center",
		SplashPos:   "center",
		Subquests:   []string{},
		Tasks:       []Task{},
		Rewards:     []Reward{},
	}
	q.Normalize()
	return q
}

// Normalize fills defaults on a payload read from storage.
func (q *Quest) Normalize() {
	if strings.TrimSpace(q.Name) == "" {
		q.Name = DefaultQuestName
	}
	if q.Status == "" {
		q.Status = StatusInactive
	} else if st, err := ParseStatus(string(q.Status)); err == nil {
		q.Status = st
	}
	if q.Image != ImageToken {
		q.Image = ImageActor
	}
	if q.Subquests == nil {
		q.Subquests = []string{}
	}
	if q.Tasks == nil {
		q.Tasks = []Task{}
	}
	if q.Rewards == nil {
		q.Rewards = []Reward{}
	}
	for i := range q.Tasks {
		q.Tasks[i] = NewTask(TaskRecord(q.Tasks[i]))
	}
}

// ParentID returns the parent identifier or an empty string.
func (q *Quest) ParentID() string {
	if q.Parent == nil {
		return ""
	}
	return *q.Parent
}

// SetParent sets the parent identifier; an empty id clears it.
func (q *Quest) SetParent(id string) {
	if id == "" {
		q.Parent = nil
		return
	}
	q.Parent = &id
}

// GiverID returns the giver reference or an empty string.
func (q *Quest) GiverID() string {
	if q.Giver == nil {
		return ""
	}
	return *q.Giver
}

// AddTask appends a task built from r. Records with an empty name are ignored.
func (q *Quest) AddTask(r TaskRecord) bool {
	t := NewTask(r)
	if !t.IsValid() {
		return false
	}
	q.Tasks = append(q.Tasks, t)
	return true
}

// AddReward appends a reward built from r. Records without a type are ignored.
func (q *Quest) AddReward(r RewardRecord) bool {
	rw := NewReward(r)
	if !rw.IsValid() {
		return false
	}
	q.Rewards = append(q.Rewards, rw)
	return true
}

// RemoveTask removes the task at index, keeping the order of the rest.
func (q *Quest) RemoveTask(index int) bool {
	if index < 0 || index >= len(q.Tasks) {
		return false
	}
	q.Tasks = slices.Delete(q.Tasks, index, index+1)
	return true
}

// RemoveReward removes the reward at index, keeping the order of the rest.
func (q *Quest) RemoveReward(index int) bool {
	if index < 0 || index >= len(q.Rewards) {
		return false
	}
	q.Rewards = slices.Delete(q.Rewards, index, index+1)
	return true
}

// SortTasks moves the task at index to target. A nil or zero target
// appends the task to the end; moving to the front is not possible. A
// negative target or an out-of-range index leaves the order unchanged.
func (q *Quest) SortTasks(index int, target *int) {
	q.Tasks = move(q.Tasks, index, target)
}

// SortRewards moves the reward at index to target with the same
// append-on-zero rule as SortTasks.
func (q *Quest) SortRewards(index int, target *int) {
	q.Rewards = move(q.Rewards, index, target)
}

func move[T any](items []T, index int, target *int) []T {
	if index < 0 || index >= len(items) || (target != nil && *target < 0) {
		return items
	}
	item := items[index]
	items = slices.Delete(items, index, index+1)
	if target != nil && *target != 0 {
		to := min(*target, len(items))
		return slices.Insert(items, to, item)
	}
	return append(items, item)
}

// AddSubquest appends a subquest identifier. Duplicates are not filtered.
func (q *Quest) AddSubquest(id string) {
	q.Subquests = append(q.Subquests, id)
}

// RemoveSubquest drops every occurrence of id from the subquest list.
func (q *Quest) RemoveSubquest(id string) {
	q.Subquests = slices.DeleteFunc(q.Subquests, func(s string) bool {
		return s == id
	})
}

// ToggleImage switches the giver image between actor and token art.
func (q *Quest) ToggleImage() string {
	if q.Image == ImageActor {
		q.Image = ImageToken
	} else {
		q.Image = ImageActor
	}
	return q.Image
}

// Clone returns a deep copy of the payload.
func (q Quest) Clone() Quest {
	c := q
	if q.Giver != nil {
		g := *q.Giver
		c.Giver = &g
	}
	if q.Parent != nil {
		p := *q.Parent
		c.Parent = &p
	}
	c.Subquests = slices.Clone(q.Subquests)
	c.Tasks = slices.Clone(q.Tasks)
	c.Rewards = make([]Reward, len(q.Rewards))
	for i, r := range q.Rewards {
		c.Rewards[i] = r
		if r.Type != nil {
			t := *r.Type
			c.Rewards[i].Type = &t
		}
		if r.Data != nil {
			d := make(map[string]any, len(r.Data))
			for k, v := range r.Data {
				d[k] = v
			}
			c.Rewards[i].Data = d
		}
	}
	return c
}

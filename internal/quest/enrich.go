package quest

import (
	"github.com/nhle/questlog/internal/model"
)

// TaskView is a task as shown to a particular user. Index points into the
// quest's full task list so clicks can be routed back.
type TaskView struct {
	Index  int
	Name   string
	State  model.TaskState
	Hidden bool
}

// RewardView is a reward as shown to a particular user.
type RewardView struct {
	Index  int
	Type   string
	Name   string
	Img    string
	Hidden bool
}

// SubquestView summarizes a subquest the user may observe.
type SubquestView struct {
	ID     string
	Name   string
	Status model.Status
}

// Giver describes who handed out the quest.
type Giver struct {
	Ref      string
	Name     string
	Image    string
	Abstract bool
}

// Enriched holds the display fields of a quest for one user.
type Enriched struct {
	ID          string
	Name        string
	Status      model.Status
	Description string
	GMNotes     string
	Giver       Giver
	Splash      string
	ParentID    string
	ParentName  string

	IsGM         bool
	IsOwner      bool
	IsObservable bool
	IsHidden     bool
	IsInactive   bool
	IsPersonal   bool

	Tasks     []TaskView
	Rewards   []RewardView
	Subquests []SubquestView

	TasksDone  int
	TasksTotal int
}

// Enrich derives the display fields of the quest for u. Hidden tasks and
// rewards, unobservable subquests and GM notes are left out for players.
func (q *Quest) Enrich(u model.User) Enriched {
	gm := u.IsGM()
	e := Enriched{
		ID:           q.id,
		Name:         q.Name,
		Status:       q.Status,
		Description:  q.Description,
		Giver:        q.giver(),
		Splash:       q.Splash,
		ParentID:     q.ParentID(),
		IsGM:         gm,
		IsOwner:      q.IsOwner(u),
		IsObservable: q.IsObservable(u),
		IsInactive:   q.Status == model.StatusInactive,
	}
	if gm {
		e.GMNotes = q.GMNotes
	}
	if parent := q.db.GetQuest(e.ParentID); parent != nil {
		e.ParentName = parent.Name
	}

	if q.entry != nil {
		e.IsPersonal, e.IsHidden = visibility(q.entry.Ownership)
	}

	for i, t := range q.Tasks {
		if t.Hidden && !gm {
			continue
		}
		e.Tasks = append(e.Tasks, TaskView{Index: i, Name: t.Name, State: t.State(), Hidden: t.Hidden})
		e.TasksTotal++
		if t.Completed {
			e.TasksDone++
		}
	}

	for i, r := range q.Rewards {
		if r.Hidden && !gm {
			continue
		}
		e.Rewards = append(e.Rewards, RewardView{
			Index:  i,
			Type:   r.TypeName(),
			Name:   r.Name(),
			Img:    r.Img(),
			Hidden: r.Hidden,
		})
	}

	for _, id := range q.Subquests {
		sub := q.db.GetQuest(id)
		if sub == nil || !sub.IsObservable(u) {
			continue
		}
		e.Subquests = append(e.Subquests, SubquestView{ID: sub.id, Name: sub.Name, Status: sub.Status})
	}

	return e
}

func (q *Quest) giver() Giver {
	ref := q.GiverID()
	g := Giver{Ref: ref, Name: q.GiverName, Image: q.Image, Abstract: ref == model.GiverAbstract}
	if ref == "" || g.Abstract {
		return g
	}
	if other := q.db.GetQuestEntry(ref); other != nil && g.Name == "" {
		g.Name = other.Name
	}
	if g.Name == "" {
		g.Name = ref
	}
	return g
}

// visibility reads the personal and hidden flags off an ownership map.
// A quest is personal when players cannot see it by default but at least
// one named user can; hidden when nobody but privileged users can.
func visibility(o model.Ownership) (personal, hidden bool) {
	if o.Level(model.DefaultOwnerKey) >= model.PermissionObserver {
		return false, false
	}
	for user, lvl := range o {
		if user != model.DefaultOwnerKey && lvl >= model.PermissionObserver {
			return true, false
		}
	}
	return false, true
}

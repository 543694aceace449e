package api

import (
	"time"

	"github.com/alexanderramin/rapport/internal/domain"
	"github.com/alexanderramin/rapport/internal/progression"
	"github.com/alexanderramin/rapport/internal/service"
)

type levelDTO struct {
	Level       int    `json:"level"`
	Label       string `json:"label"`
	Icon        string `json:"icon"`
	Description string `json:"description,omitempty"`
}

type stepDTO struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Name  string `json:"name"`
}

type pathDTO struct {
	ID          string    `json:"id"`
	Tier        int       `json:"tier"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Steps       []stepDTO `json:"steps"`
}

type levelSwitchDTO struct {
	FromLevel  int       `json:"from_level"`
	ToLevel    int       `json:"to_level"`
	SwitchedAt time.Time `json:"switched_at"`
}

type relationshipDTO struct {
	ID                    string           `json:"id"`
	ContactID             string           `json:"contact_id"`
	CurrentLevel          int              `json:"current_level"`
	CurrentPathID         *string          `json:"current_path_id"`
	CurrentStepIndex      *int             `json:"current_step_index"`
	CurrentPathInstanceID *string          `json:"current_path_instance_id"`
	LevelSwitches         []levelSwitchDTO `json:"level_switches"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

type levelStateDTO struct {
	levelDTO
	Unlocked bool `json:"unlocked"`
	Complete bool `json:"complete"`
	Current  bool `json:"current"`
}

type pathInstanceDTO struct {
	ID        string     `json:"id"`
	PathID    string     `json:"path_id"`
	Tier      int        `json:"tier"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
}

type stepInstanceDTO struct {
	StepIndex   int        `json:"step_index"`
	StepID      string     `json:"step_id"`
	CompletedAt *time.Time `json:"completed_at"`
}

type stepProgressDTO struct {
	Relationship relationshipDTO   `json:"relationship"`
	Instance     pathInstanceDTO   `json:"instance"`
	Steps        []stepInstanceDTO `json:"steps"`
	PathEnded    bool              `json:"path_ended"`
}

type outreachDTO struct {
	ID             string    `json:"id"`
	ContactID      string    `json:"contact_id"`
	Title          string    `json:"title"`
	DueDate        time.Time `json:"due_date"`
	Status         string    `json:"status"`
	DisplayStatus  string    `json:"display_status"`
	PathInstanceID *string   `json:"path_instance_id"`
	StepIndex      *int      `json:"step_index"`
}

type interactionDTO struct {
	ID           string    `json:"id"`
	ContactID    string    `json:"contact_id"`
	Date         time.Time `json:"date"`
	Location     string    `json:"location"`
	Topics       []string  `json:"topics"`
	Warmth       int       `json:"warmth"`
	Strengthened bool      `json:"strengthened"`
	Note         string    `json:"note,omitempty"`
}

type timelineEventDTO struct {
	ID            string    `json:"id"`
	Date          time.Time `json:"date"`
	Kind          string    `json:"kind"`
	Title         string    `json:"title,omitempty"`
	PathName      string    `json:"path_name,omitempty"`
	StepIndex     *int      `json:"step_index,omitempty"`
	StepName      string    `json:"step_name,omitempty"`
	DisplayStatus string    `json:"display_status,omitempty"`
	Approximate   bool      `json:"approximate,omitempty"`
	FromLevel     int       `json:"from_level,omitempty"`
	ToLevel       int       `json:"to_level,omitempty"`
	Warmth        int       `json:"warmth,omitempty"`
}

func toLevelDTO(l domain.Level) levelDTO {
	return levelDTO{Level: l.Level, Label: l.Label, Icon: string(l.Icon), Description: l.Description}
}

func toPathDTO(p *domain.Path) pathDTO {
	steps := make([]stepDTO, 0, len(p.Steps))
	for _, s := range p.Steps {
		steps = append(steps, stepDTO{Index: s.Index, ID: s.ID, Name: s.Name})
	}
	return pathDTO{ID: p.ID, Tier: p.Tier, Name: p.Name, Description: p.Description, Steps: steps}
}

func toRelationshipDTO(r *domain.ContactRelationship) relationshipDTO {
	switches := make([]levelSwitchDTO, 0, len(r.LevelSwitches))
	for _, sw := range r.LevelSwitches {
		switches = append(switches, levelSwitchDTO{FromLevel: sw.FromLevel, ToLevel: sw.ToLevel, SwitchedAt: sw.SwitchedAt})
	}
	return relationshipDTO{
		ID:                    r.ID,
		ContactID:             r.ContactID,
		CurrentLevel:          r.CurrentLevel,
		CurrentPathID:         r.CurrentPathID,
		CurrentStepIndex:      r.CurrentStepIndex,
		CurrentPathInstanceID: r.CurrentPathInstanceID,
		LevelSwitches:         switches,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}

func toLevelStateDTO(s progression.LevelState) levelStateDTO {
	return levelStateDTO{levelDTO: toLevelDTO(s.Level), Unlocked: s.Unlocked, Complete: s.Complete, Current: s.Current}
}

func toPathInstanceDTO(p *domain.PathInstance) pathInstanceDTO {
	return pathInstanceDTO{
		ID:        p.ID,
		PathID:    p.PathID,
		Tier:      p.Tier,
		Status:    string(p.Status),
		StartedAt: p.StartedAt,
		EndedAt:   p.EndedAt,
	}
}

func toStepProgressDTO(p *service.StepProgress) stepProgressDTO {
	steps := make([]stepInstanceDTO, 0, len(p.Steps))
	for _, s := range p.Steps {
		steps = append(steps, stepInstanceDTO{StepIndex: s.StepIndex, StepID: s.StepID, CompletedAt: s.CompletedAt})
	}
	return stepProgressDTO{
		Relationship: toRelationshipDTO(p.Relationship),
		Instance:     toPathInstanceDTO(p.Instance),
		Steps:        steps,
		PathEnded:    p.PathEnded,
	}
}

func toOutreachDTO(o *domain.Outreach, now time.Time) outreachDTO {
	return outreachDTO{
		ID:             o.ID,
		ContactID:      o.ContactID,
		Title:          o.Title,
		DueDate:        o.DueDate,
		Status:         string(o.Status),
		DisplayStatus:  string(progression.ClassifyOutreach(o.Status, o.DueDate, now)),
		PathInstanceID: o.PathInstanceID,
		StepIndex:      o.StepIndex,
	}
}

func toInteractionDTO(i *domain.Interaction) interactionDTO {
	topics := i.Topics
	if topics == nil {
		topics = []string{}
	}
	return interactionDTO{
		ID:           i.ID,
		ContactID:    i.ContactID,
		Date:         i.Date,
		Location:     i.Location,
		Topics:       topics,
		Warmth:       i.Warmth,
		Strengthened: i.Strengthened,
		Note:         i.Note,
	}
}

func toTimelineEventDTO(e progression.TimelineEvent) timelineEventDTO {
	dto := timelineEventDTO{
		ID:            e.ID,
		Date:          e.Date,
		Kind:          string(e.Kind),
		Title:         e.Payload.Title,
		PathName:      e.Payload.PathName,
		StepIndex:     e.Payload.StepIndex,
		StepName:      e.Payload.StepName,
		DisplayStatus: string(e.Payload.DisplayStatus),
		Approximate:   e.Payload.Approximate,
		FromLevel:     e.Payload.FromLevel,
		ToLevel:       e.Payload.ToLevel,
	}
	if e.Payload.Interaction != nil {
		dto.Warmth = e.Payload.Interaction.Warmth
	}
	return dto
}

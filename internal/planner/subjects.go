package planner

import (
	"strings"

	"github.com/google/uuid"

	applog "github.com/dori/homeroom/internal/log"
	"github.com/dori/homeroom/internal/model"
)

// Subjects returns a copy of the subject list
func (p *Planner) Subjects() []model.Subject {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]model.Subject, len(p.subjects))
	copy(out, p.subjects)
	return out
}

// Subject returns the subject with the given id
func (p *Planner) Subject(id string) (model.Subject, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := model.FindSubject(p.subjects, &id)
	if !ok {
		return model.Subject{}, ErrSubjectNotFound
	}
	return s, nil
}

// SubjectByName finds a subject by case-insensitive name or by id
func (p *Planner) SubjectByName(name string) (model.Subject, error) {
	name = strings.TrimSpace(name)

	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, s := range p.subjects {
		if strings.EqualFold(s.Name, name) || s.ID == name {
			return s, nil
		}
	}
	return model.Subject{}, ErrSubjectNotFound
}

// SubjectName returns the display name for a task's subject reference, or
// "" when the task has none or the subject is gone
func (p *Planner) SubjectName(id *string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := model.FindSubject(p.subjects, id)
	if !ok {
		return ""
	}
	return s.Name
}

// AddSubject creates a subject
func (p *Planner) AddSubject(name string, color model.Color) (model.Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Subject{}, ErrEmptyName
	}

	s := model.Subject{ID: uuid.NewString(), Name: name, Color: color}

	p.mu.Lock()
	defer p.mu.Unlock()

	next := make([]model.Subject, 0, len(p.subjects)+1)
	next = append(next, p.subjects...)
	next = append(next, s)
	p.subjects = next
	p.save()

	applog.Log.WithField("subject", name).Info("subject added")
	return s, nil
}

// UpdateSubject replaces the name and color of an existing subject
func (p *Planner) UpdateSubject(s model.Subject) error {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return ErrEmptyName
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.subjects {
		if p.subjects[i].ID != s.ID {
			continue
		}
		next := make([]model.Subject, len(p.subjects))
		copy(next, p.subjects)
		next[i] = s
		p.subjects = next
		p.save()
		return nil
	}
	return ErrSubjectNotFound
}

// DeleteSubject removes a subject. Tasks that reference it keep the
// dangling id and show as having no subject.
func (p *Planner) DeleteSubject(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := make([]model.Subject, 0, len(p.subjects))
	for _, s := range p.subjects {
		if s.ID != id {
			next = append(next, s)
		}
	}
	if len(next) == len(p.subjects) {
		return ErrSubjectNotFound
	}
	p.subjects = next
	p.save()
	return nil
}

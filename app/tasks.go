package app

import (
	"slices"
	"strings"

	"lemoncello/model"
)

// Tasks returns all tasks in creation order.
func (s *Service) Tasks() []model.Task {
	return slices.Clone(s.state.Tasks)
}

// ActiveTasks returns the tasks not yet completed.
func (s *Service) ActiveTasks() []model.Task {
	return s.tasksWhere(func(t model.Task) bool { return !t.IsCompleted })
}

func (s *Service) CompletedTasks() []model.Task {
	return s.tasksWhere(func(t model.Task) bool { return t.IsCompleted })
}

func (s *Service) tasksWhere(keep func(model.Task) bool) []model.Task {
	var out []model.Task
	for _, t := range s.state.Tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s *Service) taskIndex(id string) int {
	return slices.IndexFunc(s.state.Tasks, func(t model.Task) bool { return t.ID == id })
}

// GetTask returns a task by id.
func (s *Service) GetTask(id string) (model.Task, error) {
	i := s.taskIndex(id)
	if i < 0 {
		return model.Task{}, ErrTaskNotFound
	}
	return s.state.Tasks[i], nil
}

// ResolveTask finds a task by id, then by case-insensitive title.
func (s *Service) ResolveTask(ref string) (model.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Task{}, ErrTaskNotFound
	}
	i := s.taskIndex(ref)
	if i < 0 {
		i = slices.IndexFunc(s.state.Tasks, func(t model.Task) bool { return strings.EqualFold(t.Title, ref) })
	}
	if i < 0 {
		return model.Task{}, ErrTaskNotFound
	}
	return s.state.Tasks[i], nil
}

func (s *Service) CreateTask(title, description string) (model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Task{}, ErrInvalidName
	}
	s.pushUndo()
	s.state.Tasks = append(s.state.Tasks, model.Task{
		ID:          s.newID(),
		Title:       title,
		Description: strings.TrimSpace(description),
		CreatedAt:   s.now(),
	})
	return s.state.Tasks[len(s.state.Tasks)-1], nil
}

func (s *Service) UpdateTask(id, title, description string) (model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Task{}, ErrInvalidName
	}
	return s.editTask(id, func(t *model.Task) bool {
		t.Title = title
		t.Description = strings.TrimSpace(description)
		return true
	})
}

func (s *Service) CompleteTask(id string) (model.Task, error) {
	return s.setCompleted(id, func(bool) bool { return true })
}

func (s *Service) UncompleteTask(id string) (model.Task, error) {
	return s.setCompleted(id, func(bool) bool { return false })
}

// ToggleTask flips the completion state of a task.
func (s *Service) ToggleTask(id string) (model.Task, error) {
	return s.setCompleted(id, func(done bool) bool { return !done })
}

// setCompleted applies next to the task's completion flag. Setting the flag
// to its current value is not recorded for undo.
func (s *Service) setCompleted(id string, next func(bool) bool) (model.Task, error) {
	return s.editTask(id, func(t *model.Task) bool {
		done := next(t.IsCompleted)
		if done == t.IsCompleted {
			return false
		}
		t.IsCompleted = done
		t.CompletedAt = nil
		if done {
			at := s.now()
			t.CompletedAt = &at
		}
		return true
	})
}

// editTask runs fn on a copy of the task and stores it, with an undo
// snapshot, only when fn reports a change.
func (s *Service) editTask(id string, fn func(*model.Task) bool) (model.Task, error) {
	i := s.taskIndex(id)
	if i < 0 {
		return model.Task{}, ErrTaskNotFound
	}
	task := s.state.Tasks[i]
	if !fn(&task) {
		return task, nil
	}
	s.pushUndo()
	s.state.Tasks[i] = task
	return task, nil
}

// DeleteTask removes a task. Session records keep their task snapshot.
func (s *Service) DeleteTask(id string) error {
	i := s.taskIndex(id)
	if i < 0 {
		return ErrTaskNotFound
	}
	s.pushUndo()
	s.state.Tasks = slices.Delete(s.state.Tasks, i, i+1)
	return nil
}

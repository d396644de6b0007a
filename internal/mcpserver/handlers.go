package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/eventwiz/internal/batch"
	"github.com/mark3labs/eventwiz/internal/submit"
	"github.com/mark3labs/eventwiz/internal/validate"
	"github.com/mark3labs/mcp-go/mcp"
)

const busyMessage = "error: a submission is in progress, try again when it finishes"

type statusView struct {
	EventID    string            `json:"event_id,omitempty"`
	Step       int               `json:"step"`
	StepTitle  string            `json:"step_title"`
	StepCount  int               `json:"step_count"`
	Values     map[string]any    `json:"values"`
	Errors     map[string]string `json:"errors,omitempty"`
	FormError  string            `json:"form_error,omitempty"`
	Submitting bool              `json:"submitting"`
	Batches    []batchView       `json:"batches"`
}

type batchView struct {
	ID        string `json:"id"`
	ServerID  string `json:"server_id,omitempty"`
	Name      string `json:"name"`
	Capacity  any    `json:"capacity"`
	Price     any    `json:"price"`
	StartDate any    `json:"startDate"`
	EndDate   any    `json:"endDate"`
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctrl := s.wiz.Controller()
	snap := ctrl.Snapshot()
	view := statusView{
		EventID:    s.wiz.EventID(),
		Step:       snap.CurrentStep,
		StepTitle:  ctrl.Registry().Step(snap.CurrentStep).Title,
		StepCount:  snap.StepCount,
		Values:     snap.Values,
		Errors:     snap.Errors,
		FormError:  snap.FormError,
		Submitting: snap.Submitting,
		Batches:    []batchView{},
	}
	for _, r := range s.wiz.Batches().All() {
		view.Batches = append(view.Batches, batchView{
			ID:        r.LocalID,
			ServerID:  r.ServerID,
			Name:      r.Name,
			Capacity:  r.Capacity,
			Price:     r.Price,
			StartDate: r.StartDate,
			EndDate:   r.EndDate,
		})
	}

	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleSet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultText("error: missing 'path' parameter"), nil
	}
	value, err := request.RequireString("value")
	if err != nil {
		return mcp.NewToolResultText("error: missing 'value' parameter"), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctrl := s.wiz.Controller()
	if ctrl.Submitting() {
		return mcp.NewToolResultText(busyMessage), nil
	}
	spec, _, ok := ctrl.Registry().Field(path)
	if !ok {
		return mcp.NewToolResultText(fmt.Sprintf("error: unknown field %q", path)), nil
	}

	var stored any = value
	if spec.Rules.Kind == validate.KindBool {
		if b, err := validate.Parse(validate.KindBool, value); err == nil {
			stored = b
		}
	}
	ctrl.Set(path, stored)

	res := ctrl.Touch(path)
	if !res.Valid {
		return mcp.NewToolResultText(fmt.Sprintf("%s set, but invalid: %s", path, res.Message)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s set", path)), nil
}

func (s *Server) handleBatchAdd(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wiz.Controller().Submitting() {
		return mcp.NewToolResultText(busyMessage), nil
	}
	id := s.wiz.Batches().Add()
	return mcp.NewToolResultText(fmt.Sprintf("Added batch %s at position %d", id, s.wiz.Batches().Len()-1)), nil
}

func (s *Server) handleBatchUpdate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultText("error: missing 'id' parameter"), nil
	}
	field, err := request.RequireString("field")
	if err != nil {
		return mcp.NewToolResultText("error: missing 'field' parameter"), nil
	}
	value, err := request.RequireString("value")
	if err != nil {
		return mcp.NewToolResultText("error: missing 'value' parameter"), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wiz.Controller().Submitting() {
		return mcp.NewToolResultText(busyMessage), nil
	}
	editor := s.wiz.Batches()
	if err := editor.Update(id, field, value); err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error: %v", err)), nil
	}

	path := editor.Path(editor.Index(id), field)
	if msg, bad := editor.Validate()[path]; bad {
		return mcp.NewToolResultText(fmt.Sprintf("%s set, but invalid: %s", path, msg)), nil
	}
	s.wiz.Controller().ClearError(path)
	return mcp.NewToolResultText(fmt.Sprintf("%s set", path)), nil
}

func (s *Server) handleBatchRemove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultText("error: missing 'id' parameter"), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wiz.Controller().Submitting() {
		return mcp.NewToolResultText(busyMessage), nil
	}
	if err := s.wiz.Batches().Remove(id); err != nil {
		if errors.Is(err, batch.ErrNotFound) {
			return mcp.NewToolResultText(fmt.Sprintf("error: no batch with id %s", id)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("error: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Removed batch %s", id)), nil
}

func (s *Server) handleNext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctrl := s.wiz.Controller()
	res := ctrl.Advance()
	reg := ctrl.Registry()
	switch {
	case res.Last:
		return mcp.NewToolResultText("Already on the last step; use wizard-submit"), nil
	case !res.Advanced:
		return mcp.NewToolResultText(fmt.Sprintf("Step %d (%s) has errors:\n%s",
			res.From, reg.Step(res.From).Title, formatErrors(res.Errors))), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Moved to step %d (%s)", res.To, reg.Step(res.To).Title)), nil
}

func (s *Server) handleBack(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctrl := s.wiz.Controller()
	if !ctrl.Retreat() {
		return mcp.NewToolResultText("Already on the first step"), nil
	}
	cur := ctrl.Current()
	return mcp.NewToolResultText(fmt.Sprintf("Moved to step %d (%s)", cur, ctrl.Registry().Step(cur).Title)), nil
}

func (s *Server) handleSubmit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// The guard is claimed before waiting on mu so a concurrent submit is
	// refused, not queued.
	ctrl := s.wiz.Controller()
	if !ctrl.BeginSubmit() {
		return mcp.NewToolResultText("error: " + submit.ErrBusy.Error()), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := s.submitter.SubmitClaimed(ctx)
	if err != nil {
		var vf *submit.ValidationFailure
		var re *submit.RemoteError
		switch {
		case errors.Is(err, submit.ErrNotLastStep):
			cur := ctrl.Current()
			return mcp.NewToolResultText(fmt.Sprintf("error: %v; currently on step %d (%s)",
				err, cur, ctrl.Registry().Step(cur).Title)), nil
		case errors.As(err, &vf):
			return mcp.NewToolResultText(formatFailure(s, vf)), nil
		case errors.As(err, &re):
			return mcp.NewToolResultText("error: " + re.Message), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("error: %v", err)), nil
	}

	verb := "updated"
	if out.Created {
		verb = "created"
	}
	return mcp.NewToolResultText(fmt.Sprintf("Event %s %s", out.Event.ID, verb)), nil
}

func formatFailure(s *Server, vf *submit.ValidationFailure) string {
	var b strings.Builder
	origin := "Submission blocked"
	if vf.Server {
		origin = "The events service rejected the event"
	}
	b.WriteString(origin)
	if vf.Step >= 0 {
		fmt.Fprintf(&b, "; moved to step %d (%s)", vf.Step, s.wiz.Controller().Registry().Step(vf.Step).Title)
	}
	b.WriteString(":\n")
	if len(vf.Fields) > 0 {
		b.WriteString(formatErrors(vf.Fields))
	}
	if vf.Form != "" {
		if len(vf.Fields) > 0 {
			b.WriteString("\n")
		}
		b.WriteString("  form: " + vf.Form)
	}
	return b.String()
}

// formatErrors renders errors one per line, sorted by path.
func formatErrors(errs map[string]string) string {
	paths := make([]string, 0, len(errs))
	for p := range errs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	lines := make([]string, len(paths))
	for i, p := range paths {
		lines[i] = fmt.Sprintf("  %s: %s", p, errs[p])
	}
	return strings.Join(lines, "\n")
}

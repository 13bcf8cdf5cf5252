package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/goliatone/go-dynform/pkg/model"
)

// TextPrompt asks for a free text answer. Secret hides the input, Multiline
// opens an editor-style prompt for formattable text.
type TextPrompt struct {
	Label     string
	Default   string
	Help      string
	Secret    bool
	Multiline bool
	Validate  func(string) error
}

// ChoicePrompt asks to pick from the allowed values of a field. Selected
// holds the entries currently stored in the form.
type ChoicePrompt struct {
	Label    string
	Entries  []model.OptionEntry
	Selected []model.OptionEntry
	Multiple bool
	PageSize int
}

// Driver is the terminal seam of the Filler.
type Driver interface {
	Text(ctx context.Context, p TextPrompt) (string, error)
	Confirm(ctx context.Context, label string, def bool) (bool, error)
	// Choose returns the picked entries: exactly one unless p.Multiple.
	Choose(ctx context.Context, p ChoicePrompt) ([]model.OptionEntry, error)
	Notify(ctx context.Context, msg string) error
}

type surveyDriver struct {
	out io.Writer
}

// NewSurveyDriver returns a Driver asking on the process terminal.
func NewSurveyDriver() Driver {
	return &surveyDriver{out: os.Stdout}
}

func (d *surveyDriver) Text(ctx context.Context, p TextPrompt) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var q survey.Prompt
	switch {
	case p.Secret:
		q = &survey.Password{Message: p.Label, Help: p.Help}
	case p.Multiline:
		q = &survey.Multiline{Message: p.Label, Help: p.Help, Default: p.Default}
	default:
		q = &survey.Input{Message: p.Label, Help: p.Help, Default: p.Default}
	}

	var opts []survey.AskOpt
	if p.Validate != nil {
		validate := p.Validate
		opts = append(opts, survey.WithValidator(func(ans any) error {
			s, _ := ans.(string)
			return validate(s)
		}))
	}
	var answer string
	if err := survey.AskOne(q, &answer, opts...); err != nil {
		return "", surveyErr(err)
	}
	return answer, nil
}

func (d *surveyDriver) Confirm(ctx context.Context, label string, def bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var answer bool
	if err := survey.AskOne(&survey.Confirm{Message: label, Default: def}, &answer); err != nil {
		return false, surveyErr(err)
	}
	return answer, nil
}

func (d *surveyDriver) Choose(ctx context.Context, p ChoicePrompt) ([]model.OptionEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(p.Entries) == 0 {
		return nil, nil
	}

	names := make([]string, len(p.Entries))
	for i, entry := range p.Entries {
		names[i] = entry.Name
	}
	// Relation entries may share a display name; the href tells them apart.
	describe := func(_ string, i int) string {
		if i < 0 || i >= len(p.Entries) {
			return ""
		}
		return p.Entries[i].Href
	}
	selected := indexOf(p.Entries, p.Selected)

	if p.Multiple {
		q := &survey.MultiSelect{Message: p.Label, Options: names, Description: describe, PageSize: p.PageSize}
		if len(selected) > 0 {
			q.Default = selected
		}
		var picked []int
		if err := survey.AskOne(q, &picked); err != nil {
			return nil, surveyErr(err)
		}
		out := make([]model.OptionEntry, 0, len(picked))
		for _, i := range picked {
			if i >= 0 && i < len(p.Entries) {
				out = append(out, p.Entries[i])
			}
		}
		return out, nil
	}

	q := &survey.Select{Message: p.Label, Options: names, Description: describe, PageSize: p.PageSize}
	if len(selected) > 0 {
		q.Default = selected[0]
	}
	var picked int
	if err := survey.AskOne(q, &picked); err != nil {
		return nil, surveyErr(err)
	}
	if picked < 0 || picked >= len(p.Entries) {
		return nil, fmt.Errorf("prompt: choice %d out of range", picked)
	}
	return []model.OptionEntry{p.Entries[picked]}, nil
}

func (d *surveyDriver) Notify(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

func indexOf(entries, selected []model.OptionEntry) []int {
	var out []int
	for i, entry := range entries {
		for _, s := range selected {
			if entry == s {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

func surveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

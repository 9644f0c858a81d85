package prompt

import (
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mattn/go-isatty"

	"frame-extractor/domain/toolchain"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// StaticPrompter answers every prompt without asking: inputs get their
// default and confirmations get Answer
type StaticPrompter struct {
	Answer bool
}

func (p *StaticPrompter) Input(message string, defaultValue string) (string, error) {
	return defaultValue, nil
}

func (p *StaticPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	return p.Answer, nil
}

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// NewConfirmer returns the consent capability used before installing
// software. assumeYes answers yes without asking; without a terminal on
// stdin the answer is no.
func NewConfirmer(assumeYes bool, interactive bool) toolchain.Confirmer {
	switch {
	case assumeYes:
		return &StaticPrompter{Answer: true}
	case !interactive:
		return &StaticPrompter{Answer: false}
	default:
		return &SurveyPrompter{}
	}
}

var (
	_ Prompter            = (*SurveyPrompter)(nil)
	_ Prompter            = (*StaticPrompter)(nil)
	_ toolchain.Confirmer = (*SurveyPrompter)(nil)
)

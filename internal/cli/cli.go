// Package cli holds the printers and prompts of the line-oriented commands.
package cli

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/buger/goterm"
	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/pkg/errors"
)

var (
	// Colors for different types of output
	userInputColor = color.New(color.FgWhite)
	botOutputColor = color.New(color.FgCyan)
	errorColor     = color.New(color.FgRed)
	successColor   = color.New(color.FgGreen)
	titleColor     = color.New(color.FgMagenta, color.Bold)
	separatorColor = color.New(color.FgHiBlack)
	fileColor      = color.New(color.FgRed)
	dimColor       = color.New(color.FgHiBlack)
	promptColor    = color.New(color.FgHiBlue)

	width = goterm.Width()
)

// Separator printed to cli.
func Separator() {
	separator := strings.Repeat("-", width)
	separatorColor.Println(separator)
}

// Title printed to cli.
func Title(text string, args ...any) {
	title := "      " + fmt.Sprintf(text, args...) + "      "
	leftWidth := max((width-len(title))/2, 0)
	separator1 := strings.Repeat("-", leftWidth)
	separator2 := strings.Repeat("-", max(width-len(title)-len(separator1), 0))
	titleColor.Println(separator1 + title + separator2)
}

// UserInput printed to cli.
func UserInput(text string, args ...any) {
	userInputColor.Printf(text, args...)
}

// BotOutput printed to cli. text is printed verbatim.
func BotOutput(text string) {
	botOutputColor.Print(text)
}

// Error printed to cli.
func Error(text string, args ...any) {
	errorColor.Printf(text, args...)
}

// Success printed to cli.
func Success(text string, args ...any) {
	successColor.Printf(text, args...)
}

// FileInfo printed to cli.
func FileInfo(text string, args ...any) {
	fileColor.Printf(text, args...)
}

// Dim printed to cli.
func Dim(text string, args ...any) {
	dimColor.Printf(text, args...)
}

// PromptUser for input. Lines accumulate until Ctrl+J; history is recalled with the arrow keys.
func PromptUser(history []string) (string, error) {
	exit := false
	config := &readline.Config{
		Prompt:            promptColor.Sprint("> "),
		InterruptPrompt:   "^C",
		HistorySearchFold: true,
		FuncFilterInputRune: func(r rune) (rune, bool) {
			if r == '\x0A' { // Ctrl + J
				exit = true
			}
			return r, true
		},
	}

	rl, err := readline.NewEx(config)
	if err != nil {
		return "", err
	}
	defer rl.Close()
	for _, entry := range history {
		// Multi-line entries would be recalled one line at a time.
		if err := rl.SaveHistory(strings.ReplaceAll(entry, "\n", " ")); err != nil {
			return "", err
		}
	}
	var lines []string
	for {
		line, err := rl.Readline()
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
		if exit {
			break
		}
		rl.SetPrompt("")
	}
	return strings.Join(lines, "\n"), nil
}

// QueryUser a yes/no question.
func QueryUser(question string) bool {
	surveyQuestion := &survey.Confirm{
		Message: question,
	}
	confirm := false
	survey.AskOne(surveyQuestion, &confirm)
	return confirm
}

// Credentials entered at a prompt.
type Credentials struct {
	Username string
	Email    string
	Password string
}

// AskCredentials prompts for an email and password, and a username when signup is set.
// Every field is required.
func AskCredentials(signup bool) (*Credentials, error) {
	var questions []*survey.Question
	if signup {
		questions = append(questions, &survey.Question{
			Name:     "username",
			Prompt:   &survey.Input{Message: "Username:"},
			Validate: survey.Required,
		})
	}
	questions = append(questions,
		&survey.Question{
			Name:     "email",
			Prompt:   &survey.Input{Message: "Email:"},
			Validate: survey.Required,
		},
		&survey.Question{
			Name:     "password",
			Prompt:   &survey.Password{Message: "Password:"},
			Validate: survey.Required,
		},
	)

	answers := struct {
		Username string `survey:"username"`
		Email    string `survey:"email"`
		Password string `survey:"password"`
	}{}
	if err := survey.Ask(questions, &answers); err != nil {
		return nil, errors.Wrap(err, "reading credentials")
	}
	return &Credentials{
		Username: strings.TrimSpace(answers.Username),
		Email:    strings.TrimSpace(answers.Email),
		Password: answers.Password,
	}, nil
}

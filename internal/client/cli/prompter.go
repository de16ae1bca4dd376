package cli

import (
	"bufio"
	"io"

	"github.com/dmitrijs2005/tubeboost/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// prompter adapts the input helpers to views.Prompter.
type prompter struct {
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
}

func (p *prompter) Text(prompt string) (string, error) {
	return getSimpleText(p.reader, prompt, p.out)
}

func (p *prompter) Password(prompt string) (string, error) {
	pw, err := getPassword(p.reader, p.in, prompt, p.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

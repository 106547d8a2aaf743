package cli

import (
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/kballard/go-shellquote"
)

const defaultEditor = "vi"

// editorCommand splits $VISUAL or $EDITOR the way a shell would, so values
// such as "code --wait" work.
func editorCommand() ([]string, error) {
	raw := os.Getenv("VISUAL")
	if raw == "" {
		raw = os.Getenv("EDITOR")
	}
	if raw == "" {
		raw = defaultEditor
	}
	args, err := shellquote.Split(raw)
	if err == nil && len(args) == 0 {
		args = []string{defaultEditor}
	}
	return args, err
}

// editText opens initial in the user's editor and returns the saved text.
func editText(ctx context.Context, initial string, stdin io.Reader, stdout, stderr io.Writer) (ret string, err error) {
	var args []string
	if args, err = editorCommand(); err != nil {
		return
	}

	var f *os.File
	if f, err = os.CreateTemp("", "sqltutor-*.sql"); err != nil {
		return
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err = f.WriteString(initial); err != nil {
		f.Close()
		return
	}
	if err = f.Close(); err != nil {
		return
	}

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = stdin, stdout, stderr
	if err = cmd.Run(); err != nil {
		return
	}

	var data []byte
	if data, err = os.ReadFile(path); err != nil {
		return
	}
	ret = string(data)
	return
}

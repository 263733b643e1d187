package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ericksa/legalyze/internal/document"
	"github.com/ericksa/legalyze/internal/notice"
	"github.com/ericksa/legalyze/internal/session"
	"github.com/ericksa/legalyze/internal/terminal"
)

var plain bool

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive contract session",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		analyzer, err := newAnalyzer()
		if err != nil {
			fatal("Error creating analyzer", err)
		}
		objects, err := newObjectSource()
		if err != nil {
			fatal("Error connecting to object storage", err)
		}

		var opts []terminal.Option
		if plain {
			opts = append(opts, terminal.WithPlainText())
		}
		sink := terminal.New(cmd.OutOrStdout(), opts...)
		sess := session.New(analyzer,
			session.WithSink(sink),
			session.WithIngester(newGate()),
			session.WithLogger(logger.Named("session")),
			session.WithContext(cmd.Context()),
			session.WithSuggestionFencing(cfg.Client.SuggestionFencing),
		)

		r := &repl{
			sess:    sess,
			in:      bufio.NewScanner(cmd.InOrStdin()),
			out:     cmd.OutOrStdout(),
			objects: objects,
			bucket:  cfg.MinIO.DefaultBucket,
		}
		if err := r.run(cmd.Context()); err != nil {
			fatal("Error reading input", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().BoolVar(&plain, "plain", false, "print markdown answers without rendering")
}

const replHelp = `Commands:
  open <path|minio://bucket/key>  load a .txt or .pdf contract
  paste                           enter contract text, end with a single "."
  sample                          load the sample rental agreement
  mode [simplified|redflags|sandbox|qa]
  analyze [mode]                  run simplify or red flag analysis
  ask <question>                  ask about the loaded contract
  edit                            replace the sandbox draft, end with "."
  draft                           print the sandbox draft
  reset                           restore the draft to the original
  improve                         rewrite the draft with AI
  apply <n>                       apply suggestion n to the draft
  diff                            compare the draft with the original
  status                          show session state
  quit`

type repl struct {
	sess    *session.Session
	in      *bufio.Scanner
	out     io.Writer
	objects *document.ObjectSource
	bucket  string
}

// run reads commands until quit or end of input.
func (r *repl) run(ctx context.Context) error {
	fmt.Fprintln(r.out, `Legalyze. Type "help" for commands.`)
	defer r.sess.Wait()
	for {
		fmt.Fprint(r.out, "legalyze> ")
		if !r.in.Scan() {
			fmt.Fprintln(r.out)
			return r.in.Err()
		}
		if quit := r.exec(ctx, r.in.Text()); quit {
			return nil
		}
	}
}

// exec runs one command line and reports whether the session should end.
func (r *repl) exec(ctx context.Context, line string) bool {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	var err error
	switch name {
	case "":
	case "help", "?":
		fmt.Fprintln(r.out, replHelp)
	case "quit", "exit":
		return true
	case "open":
		err = r.open(ctx, arg)
	case "paste":
		err = r.sess.Paste(r.readBlock())
	case "sample":
		r.sess.LoadSample()
	case "mode":
		err = r.mode(arg)
	case "analyze":
		err = r.analyze(ctx, arg)
	case "ask":
		_, err = r.sess.Ask(ctx, arg)
	case "edit":
		r.sess.Edit(r.readBlock())
	case "draft":
		fmt.Fprintln(r.out, r.sess.Snapshot().Draft)
	case "reset":
		if !r.sess.Reset() {
			fmt.Fprintln(r.out, "No document loaded.")
		}
	case "improve":
		err = r.sess.Improve(ctx)
	case "apply":
		err = r.apply(arg)
	case "diff":
		terminal.WriteDiff(r.out, r.sess.SandboxDiff())
	case "status":
		terminal.WriteStatus(r.out, r.sess.Snapshot())
	default:
		err = fmt.Errorf("unknown command %q, type help", name)
	}
	r.report(err)
	return false
}

// report prints err unless the session already showed it as a notice.
func (r *repl) report(err error) {
	if err == nil {
		return
	}
	var shown *notice.Error
	if errors.As(err, &shown) {
		return
	}
	fmt.Fprintf(r.out, "error: %v\n", err)
}

// readBlock reads lines until a line holding only "." or end of input.
func (r *repl) readBlock() string {
	fmt.Fprintln(r.out, `(end with a line containing only ".")`)
	var lines []string
	for r.in.Scan() {
		line := r.in.Text()
		if line == "." {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (r *repl) open(ctx context.Context, arg string) error {
	if arg == "" {
		return errors.New("usage: open <path|minio://bucket/key>")
	}
	var (
		f   document.File
		err error
	)
	if strings.HasPrefix(arg, document.ObjectScheme) {
		f, err = r.fetchObject(ctx, arg)
	} else {
		f, err = readLocalFile(arg)
	}
	if err != nil {
		return err
	}
	return r.sess.Upload(ctx, f)
}

func (r *repl) fetchObject(ctx context.Context, ref string) (document.File, error) {
	if r.objects == nil {
		return document.File{}, errors.New("object storage is not configured (minio.enabled)")
	}
	if rest := strings.TrimPrefix(ref, document.ObjectScheme); !strings.Contains(rest, "/") && r.bucket != "" {
		ref = document.ObjectScheme + r.bucket + "/" + rest
	}
	return r.objects.Fetch(ctx, ref)
}

// readLocalFile leaves Data empty for files over the upload limit so the
// gate rejects them by size without reading them.
func readLocalFile(path string) (document.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return document.File{}, err
	}
	if info.IsDir() {
		return document.File{}, fmt.Errorf("%s is a directory", path)
	}
	f := document.File{Name: filepath.Base(path), Size: info.Size()}
	if info.Size() > cfgMaxUpload() {
		return f, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return document.File{}, err
	}
	f.Data = data
	f.Size = int64(len(data))
	return f, nil
}

func cfgMaxUpload() int64 {
	if cfg != nil && cfg.Analysis.MaxUploadSize > 0 {
		return cfg.Analysis.MaxUploadSize
	}
	return document.MaxFileSize
}

func (r *repl) mode(arg string) error {
	if arg == "" {
		fmt.Fprintf(r.out, "Mode: %s\n", r.sess.Snapshot().Mode)
		return nil
	}
	m, err := session.ParseMode(arg)
	if err != nil {
		return err
	}
	return r.sess.SwitchMode(m)
}

func (r *repl) analyze(ctx context.Context, arg string) error {
	m := r.sess.Snapshot().Mode
	if arg != "" {
		parsed, err := session.ParseMode(arg)
		if err != nil {
			return err
		}
		if parsed != m {
			if err := r.sess.SwitchMode(parsed); err != nil {
				return err
			}
		}
		m = parsed
	}
	return r.sess.RequestAnalysis(ctx, m)
}

func (r *repl) apply(arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return errors.New("usage: apply <suggestion number>")
	}
	_, err = r.sess.ApplySuggestion(n - 1)
	return err
}

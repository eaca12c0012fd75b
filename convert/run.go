package convert

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"mdc/docx"
	"mdc/fetch"
	"mdc/refs"
	"mdc/state"
	"mdc/store"
)

// Run is the action behind the convert subcommand. It wires the store and
// fetch collaborators from configuration and drives one conversion.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	cfg, log := env.Cfg, env.Log

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return fmt.Errorf("no source transcript specified")
	}
	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		dst = "."
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many arguments", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}
	env.Overwrite = cmd.Bool("overwrite")
	env.ChatID = cmd.String("chat-id")
	env.UserName = cmd.String("user")

	content, err := readSource(src)
	if err != nil {
		return err
	}
	sources, err := readSources(cmd.String("sources"))
	if err != nil {
		return err
	}

	var (
		chats  ChatStore
		images docx.ImageResolver
		files  fetch.FileStore
	)
	if len(cfg.Store.Database) > 0 {
		st, er := store.Open(cfg.Store.Database)
		if er != nil {
			return er
		}
		defer func() {
			err = multierr.Append(err, st.Close())
		}()
		chats, files = st, st
	}
	images = fetch.New(&cfg.Fetch, &cfg.Document.Images, files, log.Named("fetch"))

	converter := New(cfg, log.Named("convert"), nil, chats, images)
	res, err := converter.Run(ctx, Request{
		Markdown:  content,
		ChatID:    env.ChatID,
		UserName:  env.UserName,
		Sources:   sources,
		OutputDir: dst,
	})
	if err != nil {
		return err
	}

	env.Rpt.Store("output.docx", res.Path)
	log.Info("Conversion finished", zap.String("output", res.Path), zap.Int("diagrams", res.Diagrams))
	return nil
}

// RunPatch is the action behind the patch subcommand: it splices rendered
// diagram SVGs into a previously exported document.
func RunPatch(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	cfg, log := env.Cfg, env.Log

	src := cmd.Args().Get(0)
	manifestPath := cmd.Args().Get(1)
	if len(src) == 0 || len(manifestPath) == 0 {
		return fmt.Errorf("both document and manifest must be specified")
	}
	dst := cmd.Args().Get(2)
	if len(dst) == 0 {
		dst = src
	}
	if dst != src && !cmd.Bool("overwrite") {
		if _, err := os.Stat(dst); err == nil {
			return fmt.Errorf("output file already exists: %s", dst)
		}
	}

	manifest, err := docx.LoadPatchManifest(manifestPath)
	if err != nil {
		return err
	}

	diagram := &cfg.Document.Diagram
	return docx.Patch(ctx, src, dst, manifest, docx.RenderParams{
		PNGScale:       diagram.PNGScale,
		DisplayScale:   diagram.DisplayScale,
		Background:     diagram.Background,
		OptimizeLayout: diagram.OptimizeLayout,
	}, cfg.Document.FixZip, log.Named("patch"))
}

// readSource loads the transcript, "-" meaning standard input.
func readSource(src string) (string, error) {
	if src == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("unable to read standard input: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("unable to read source transcript: %w", err)
	}
	return string(data), nil
}

// readSources decodes the optional citation sources file, a JSON array of
// retrieval source groups.
func readSources(path string) ([]refs.SourceGroup, error) {
	if len(path) == 0 {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read sources file: %w", err)
	}
	var groups []refs.SourceGroup
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("unable to decode sources file: %w", err)
	}
	return groups, nil
}

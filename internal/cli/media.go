// Package cli wires the converters behind cobra commands. Argument parsing
// and output-path handling live here; all real work happens in the
// internal packages.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/mdforge/mdforge/internal/audio"
	"github.com/mdforge/mdforge/internal/convert"
	"github.com/mdforge/mdforge/internal/ffmpeg"
	"github.com/mdforge/mdforge/internal/markdown"
	"github.com/mdforge/mdforge/internal/transcribe"
)

// newConverterFn builds the media converter; injectable for testing.
type newConverterFn func(verbose bool) (convert.Converter, error)

// Env provides injectable dependencies for commands.
type Env struct {
	NewMediaConverter newConverterFn
	Stdout            *os.File
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Env {
	return &Env{
		NewMediaConverter: newMediaConverter,
		Stdout:            os.Stdout,
	}
}

// newMediaConverter assembles the production media converter: FFmpeg tool,
// transcription pipeline, and markdown formatter.
func newMediaConverter(verbose bool) (convert.Converter, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, transcribe.ErrAPIKeyMissing
	}

	ffmpegPath, err := ffmpeg.Resolve()
	if err != nil {
		return nil, err
	}

	tool, err := audio.NewTool(ffmpegPath)
	if err != nil {
		return nil, err
	}

	client := openai.NewClient(apiKey)
	transcriber := transcribe.NewOpenAITranscriber(client, apiKey)
	pipeline := transcribe.NewPipeline(tool, transcriber)
	formatter := markdown.NewOpenAIFormatter(client)

	var opts []convert.MediaOption
	if verbose {
		opts = append(opts, convert.WithVerbose(func(msg string) {
			fmt.Fprintln(os.Stderr, msg)
		}))
	}
	return convert.NewMedia(pipeline, formatter, tool, opts...), nil
}

// deriveOutputPath converts a media file path to a markdown output path.
// Example: "talk.mp4" -> "talk.md"
func deriveOutputPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + ".md"
}

// MediaCmd creates the media command.
func MediaCmd(env *Env) *cobra.Command {
	var (
		output      string
		speakers    []string
		speakerRefs []string
		diarize     bool
		frontmatter bool
		force       bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "media <file>",
		Short: "Convert an audio or video file to a markdown transcript",
		Long: `Transcribe an audio or video file and format the result as markdown.

Long audio is compressed or split into overlapping chunks so it fits the
transcription API's upload limit. Diarization attributes the transcript to
speakers; --speakers names them, and --speaker-ref pins identities with
short reference clips (paired one-to-one with --speakers, at most 4).`,
		Example: `  mdforge media talk.mp4
  mdforge media interview.mp3 --speakers Alice,Bob
  mdforge media panel.wav --speakers Alice --speaker-ref alice.wav
  mdforge media podcast.m4a --diarize=false -o podcast.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMedia(cmd, env, args[0], mediaFlags{
				output:      output,
				speakers:    speakers,
				speakerRefs: speakerRefs,
				diarize:     diarize,
				frontmatter: frontmatter,
				force:       force,
				verbose:     verbose,
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: <input>.md)")
	cmd.Flags().StringSliceVar(&speakers, "speakers", nil, "Speaker display names, in order of first appearance")
	cmd.Flags().StringSliceVar(&speakerRefs, "speaker-ref", nil, "Reference audio clips pinning speaker identities")
	cmd.Flags().BoolVar(&diarize, "diarize", true, "Enable speaker identification")
	cmd.Flags().BoolVar(&frontmatter, "frontmatter", false, "Prepend YAML frontmatter to the output")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite the output file if it exists")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print progress to stderr")

	return cmd
}

// mediaFlags bundles the media command's flag values.
type mediaFlags struct {
	output      string
	speakers    []string
	speakerRefs []string
	diarize     bool
	frontmatter bool
	force       bool
	verbose     bool
}

// runMedia executes the media conversion.
func runMedia(cmd *cobra.Command, env *Env, inputPath string, flags mediaFlags) error {
	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("%w: %s", ErrFileNotFound, inputPath)
	}

	outputPath := flags.output
	if outputPath == "" {
		outputPath = deriveOutputPath(inputPath)
	}
	if !flags.force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("%w: %s (use --force to overwrite)", ErrOutputExists, outputPath)
		}
	}

	converter, err := env.NewMediaConverter(flags.verbose)
	if err != nil {
		return err
	}

	result, err := converter.Convert(cmd.Context(), inputPath, convert.Options{
		Diarize:           flags.diarize,
		Speakers:          flags.speakers,
		SpeakerReferences: flags.speakerRefs,
		Frontmatter:       flags.frontmatter,
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, []byte(result.Markdown), 0644); err != nil { // #nosec G306 -- user document
		return fmt.Errorf("failed to write output: %w", err)
	}

	fmt.Fprintf(env.Stdout, "Wrote %s\n", outputPath)
	return nil
}

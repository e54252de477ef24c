package video

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

const (
	defaultFFmpegPath  = "ffmpeg"
	defaultFFprobePath = "ffprobe"
	defaultBackground  = "0x071013"
	defaultFontFile    = "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"
	defaultFontSize    = 36
)

// Composer renders a narrated title card video: a solid background with the
// lesson title centered on it, muxed with the narration audio.
type Composer struct {
	ffmpegPath  string
	ffprobePath string
	width       int
	height      int
	background  string
	fontFile    string
	fontSize    int
}

type ComposerOptions struct {
	FFmpegPath  string
	FFprobePath string
	Resolution  string
	Background  string
	FontFile    string
	FontSize    int
}

type ComposeRequest struct {
	AudioPath        string
	Title            string
	OutputPath       string
	GuidelineSeconds int
}

type ComposeResult struct {
	OutputPath      string
	DurationSeconds int
	TitleRendered   bool
}

func NewComposer(opts ComposerOptions) *Composer {
	ffmpegPath := opts.FFmpegPath
	if ffmpegPath == "" {
		ffmpegPath = defaultFFmpegPath
	}
	ffprobePath := opts.FFprobePath
	if ffprobePath == "" {
		ffprobePath = defaultFFprobePath
	}
	width, height := parseResolution(opts.Resolution)
	background := opts.Background
	if background == "" {
		background = defaultBackground
	}
	fontFile := opts.FontFile
	if fontFile == "" {
		fontFile = defaultFontFile
	}
	fontSize := opts.FontSize
	if fontSize <= 0 {
		fontSize = defaultFontSize
	}

	return &Composer{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		width:       width,
		height:      height,
		background:  background,
		fontFile:    fontFile,
		fontSize:    fontSize,
	}
}

// Compose renders the video for req at req.OutputPath. The clip length is the
// narration length rounded to whole seconds, but never shorter than
// req.GuidelineSeconds. When the title overlay render fails, typically because
// the font file is missing, it retries with a plain background.
func (c *Composer) Compose(ctx context.Context, req ComposeRequest) (*ComposeResult, error) {
	audioSeconds, err := c.getAudioDuration(ctx, req.AudioPath)
	if err != nil {
		slog.Warn("Audio probe failed, using guideline duration", "error", err)
		audioSeconds = float64(req.GuidelineSeconds)
	}

	dur := finalDuration(audioSeconds, req.GuidelineSeconds)

	titleCard := req.OutputPath + ".color.mp4"
	defer func() { _ = os.Remove(titleCard) }()

	primaryErr := c.renderWithTitle(ctx, req, titleCard, dur)
	if primaryErr == nil {
		return &ComposeResult{OutputPath: req.OutputPath, DurationSeconds: dur, TitleRendered: true}, nil
	}

	slog.Warn("Title overlay render failed, retrying with plain background", "error", primaryErr)

	if fallbackErr := c.runFFmpeg(ctx, c.buildFallbackArgs(req.AudioPath, req.OutputPath, dur)); fallbackErr != nil {
		return nil, fmt.Errorf("%v\nfallback failed: %v", primaryErr, fallbackErr)
	}

	return &ComposeResult{OutputPath: req.OutputPath, DurationSeconds: dur, TitleRendered: false}, nil
}

// renderWithTitle renders the title card clip and then muxes it with the
// narration audio.
func (c *Composer) renderWithTitle(ctx context.Context, req ComposeRequest, titleCard string, dur int) error {
	if err := c.runFFmpeg(ctx, c.buildTitleCardArgs(req.Title, titleCard, dur)); err != nil {
		return err
	}
	return c.runFFmpeg(ctx, c.buildMuxArgs(titleCard, req.AudioPath, req.OutputPath))
}

func (c *Composer) runFFmpeg(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w, output: %s", err, string(output))
	}
	return nil
}

func (c *Composer) buildTitleCardArgs(title, outputPath string, dur int) []string {
	return []string{
		"-y",
		"-f", "lavfi",
		"-i", c.colorSource(dur),
		"-vf", c.drawTextFilter(title),
		"-c:v", "libx264",
		"-t", strconv.Itoa(dur),
		"-pix_fmt", "yuv420p",
		outputPath,
	}
}

func (c *Composer) buildMuxArgs(titleCard, audioPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", titleCard,
		"-i", audioPath,
		"-c:v", "libx264",
		"-c:a", "aac",
		"-shortest",
		outputPath,
	}
}

// buildFallbackArgs renders background and audio in a single pass, with no
// drawtext stage that could fail.
func (c *Composer) buildFallbackArgs(audioPath, outputPath string, dur int) []string {
	return []string{
		"-y",
		"-f", "lavfi",
		"-i", c.colorSource(dur),
		"-i", audioPath,
		"-c:v", "libx264",
		"-c:a", "aac",
		"-shortest",
		outputPath,
	}
}

func (c *Composer) colorSource(dur int) string {
	return fmt.Sprintf("color=c=%s:s=%dx%d:d=%d", c.background, c.width, c.height, dur)
}

func (c *Composer) drawTextFilter(title string) string {
	return fmt.Sprintf(
		"drawtext=fontfile=%s:text='%s':fontsize=%d:fontcolor=white:x=(w-text_w)/2:y=(h-text_h)/2",
		c.fontFile, escapeDrawText(title), c.fontSize,
	)
}

func (c *Composer) getAudioDuration(ctx context.Context, path string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}

	cmd := exec.CommandContext(ctx, c.ffprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var dur float64
	if _, err := fmt.Sscanf(string(output), "%f", &dur); err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return dur, nil
}

// finalDuration rounds the narration length to whole seconds and enforces the
// guideline as a minimum.
func finalDuration(audioSeconds float64, guideline int) int {
	dur := int(audioSeconds + 0.5)
	if dur < guideline {
		return guideline
	}
	return dur
}

// escapeDrawText escapes the characters that would terminate or alter
// drawtext's quoted text value. Titles come straight from the model, so
// apostrophes are common.
func escapeDrawText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `'\''`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return s
}

func parseResolution(res string) (int, int) {
	parts := strings.Split(res, "x")
	if len(parts) != 2 {
		return 1280, 720
	}
	width, err := strconv.Atoi(parts[0])
	if err != nil {
		return 1280, 720
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil {
		return 1280, 720
	}
	return width, height
}

package lesson

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"lessonreel/internal/llm"
	"lessonreel/pkg/prompts"
)

type fakeClient struct {
	reply      string
	err        error
	lastPrompt string
}

func (f *fakeClient) Complete(_ context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

const validQuizJSON = `[
	{"question":"What do plants absorb?","options":["Light","Lava","Wifi","Noise"],"answer":"Light"},
	{"question":"Where does it happen?","options":["Roots","Leaves","Bark","Soil"],"answer":"Leaves"},
	{"question":"What gas comes out?","options":["Oxygen","Helium","Argon","Methane"],"answer":"Oxygen"}
]`

func testGenerator(client llm.Client) *Generator {
	p, err := prompts.LoadFrom("does-not-exist.yaml")
	if err != nil {
		panic(err)
	}
	return NewGenerator(client, p)
}

func TestGenerateSuccess(t *testing.T) {
	reply := fmt.Sprintf(
		`Sure! Here is the lesson: {"title":"Photosynthesis 101","script":"Plants eat light. True story.","quiz":%s} Enjoy!`,
		validQuizJSON,
	)
	client := &fakeClient{reply: reply}

	payload, err := testGenerator(client).Generate(context.Background(), "Photosynthesis", "Student", 30)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	if payload.Title != "Photosynthesis 101" {
		t.Errorf("Title = %q, want Photosynthesis 101", payload.Title)
	}
	if payload.Script != "Plants eat light. True story." {
		t.Errorf("Script = %q, want the lesson script", payload.Script)
	}
	if len(payload.Quiz) != QuizLength {
		t.Fatalf("Quiz length = %d, want %d", len(payload.Quiz), QuizLength)
	}
	if payload.Quiz[0].Answer != "Light" {
		t.Errorf("Quiz[0].Answer = %q, want Light", payload.Quiz[0].Answer)
	}

	for _, fragment := range []string{"Photosynthesis", "Student", "about 30 seconds"} {
		if !strings.Contains(client.lastPrompt, fragment) {
			t.Errorf("prompt does not contain %q", fragment)
		}
	}
}

func TestGenerateBraceInsideTitle(t *testing.T) {
	reply := fmt.Sprintf(
		`{"title":"Mind = {blown}","script":"Short script.","quiz":%s}`,
		validQuizJSON,
	)
	client := &fakeClient{reply: reply}

	payload, err := testGenerator(client).Generate(context.Background(), "Physics", "Student", 45)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if payload.Title != "Mind = {blown}" {
		t.Errorf("Title = %q, want the braced title intact", payload.Title)
	}
}

func TestGenerateTitleFallback(t *testing.T) {
	reply := fmt.Sprintf(`{"title":"","script":"Things fall down.","quiz":%s}`, validQuizJSON)
	client := &fakeClient{reply: reply}

	payload, err := testGenerator(client).Generate(context.Background(), "Gravity", "Student", 45)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if payload.Title != "Gravity for Student" {
		t.Errorf("Title = %q, want %q", payload.Title, "Gravity for Student")
	}
}

func TestGenerateUpstreamError(t *testing.T) {
	client := &fakeClient{err: fmt.Errorf("%w: huggingface returned 503", llm.ErrUpstreamUnavailable)}

	_, err := testGenerator(client).Generate(context.Background(), "Gravity", "Student", 45)
	if !errors.Is(err, llm.ErrUpstreamUnavailable) {
		t.Errorf("Generate() error = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestGenerateUnparsableOutput(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{name: "noJSONAtAll", reply: "I am sorry, I cannot help with that."},
		{name: "unterminatedObject", reply: `{"title":"Gravity","script":"..."`},
		{name: "malformedObject", reply: `{"title";"Gravity"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{reply: tt.reply}

			_, err := testGenerator(client).Generate(context.Background(), "Gravity", "Student", 45)
			if !errors.Is(err, ErrUnparsableOutput) {
				t.Fatalf("Generate() error = %v, want ErrUnparsableOutput", err)
			}
			if !strings.Contains(err.Error(), "raw:") {
				t.Errorf("error %q does not carry a raw snippet", err)
			}
		})
	}
}

func TestGenerateUnparsableSnippetCapped(t *testing.T) {
	client := &fakeClient{reply: strings.Repeat("y", 3000)}

	_, err := testGenerator(client).Generate(context.Background(), "Gravity", "Student", 45)
	if !errors.Is(err, ErrUnparsableOutput) {
		t.Fatalf("Generate() error = %v, want ErrUnparsableOutput", err)
	}
	if strings.Contains(err.Error(), strings.Repeat("y", maxRawSnippet+1)) {
		t.Errorf("raw snippet longer than %d bytes", maxRawSnippet)
	}
}

func TestGenerateIncompleteOutput(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{
			name:  "missingQuiz",
			reply: `{"title":"Gravity","script":"Things fall."}`,
		},
		{
			name:  "missingScript",
			reply: fmt.Sprintf(`{"title":"Gravity","quiz":%s}`, validQuizJSON),
		},
		{
			name:  "missingTitle",
			reply: fmt.Sprintf(`{"script":"Things fall.","quiz":%s}`, validQuizJSON),
		},
		{
			name:  "quizWrongType",
			reply: `{"title":"Gravity","script":"Things fall.","quiz":"none"}`,
		},
		{
			name:  "emptyQuiz",
			reply: `foo {"title":"a}b","script":"x","quiz":[]} bar`,
		},
		{
			name: "tooFewOptions",
			reply: `{"title":"Gravity","script":"x","quiz":[
				{"question":"q1","options":["A","B","C","D"],"answer":"A"},
				{"question":"q2","options":["A","B"],"answer":"A"},
				{"question":"q3","options":["A","B","C","D"],"answer":"A"}
			]}`,
		},
		{
			name: "answerNotAmongOptions",
			reply: `{"title":"Gravity","script":"x","quiz":[
				{"question":"q1","options":["A","B","C","D"],"answer":"A"},
				{"question":"q2","options":["A","B","C","D"],"answer":"A"},
				{"question":"q3","options":["A","B","C","D"],"answer":"E"}
			]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{reply: tt.reply}

			_, err := testGenerator(client).Generate(context.Background(), "Gravity", "Student", 45)
			if !errors.Is(err, ErrIncompleteOutput) {
				t.Errorf("Generate() error = %v, want ErrIncompleteOutput", err)
			}
		})
	}
}

func TestGenerateRenderError(t *testing.T) {
	p := &prompts.Prompts{
		System: prompts.SystemPrompts{Default: "system"},
		Lesson: prompts.LessonPrompts{Generate: "{{.Broken"},
	}
	g := NewGenerator(&fakeClient{reply: "{}"}, p)

	_, err := g.Generate(context.Background(), "Gravity", "Student", 45)
	if err == nil || !strings.Contains(err.Error(), "render prompt") {
		t.Errorf("Generate() error = %v, want render prompt failure", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Payload {
		return &Payload{
			Title:  "T",
			Script: "S",
			Quiz: []QuizItem{
				{Question: "q1", Options: []string{"A", "B", "C", "D"}, Answer: "A"},
				{Question: "q2", Options: []string{"A", "B", "C", "D"}, Answer: "B"},
				{Question: "q3", Options: []string{"A", "B", "C", "D"}, Answer: "C"},
			},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Errorf("Validate() on valid payload: %v", err)
	}

	short := valid()
	short.Quiz = short.Quiz[:2]
	if err := short.Validate(); !errors.Is(err, ErrIncompleteOutput) {
		t.Errorf("Validate() with 2 items = %v, want ErrIncompleteOutput", err)
	}

	fiveOpts := valid()
	fiveOpts.Quiz[1].Options = append(fiveOpts.Quiz[1].Options, "E")
	if err := fiveOpts.Validate(); !errors.Is(err, ErrIncompleteOutput) {
		t.Errorf("Validate() with 5 options = %v, want ErrIncompleteOutput", err)
	}

	badAnswer := valid()
	badAnswer.Quiz[2].Answer = "nope"
	if err := badAnswer.Validate(); !errors.Is(err, ErrIncompleteOutput) {
		t.Errorf("Validate() with foreign answer = %v, want ErrIncompleteOutput", err)
	}
}

package publish

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"lessonreel/internal/lesson"
)

var keyRegex = regexp.MustCompile(`^student_[0-9a-f]{32}\.mp4$`)

type fakeStore struct {
	uploadErr   error
	resolveErr  error
	uploadedKey string
	contentType string
	data        []byte
}

func (f *fakeStore) Upload(_ context.Context, key string, r io.Reader, contentType string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.uploadedKey = key
	f.contentType = contentType
	f.data = data
	return nil
}

func (f *fakeStore) ResolveURL(_ context.Context, key string) (string, error) {
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	return "https://videos.example.com/" + key, nil
}

func writeTestVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lesson.mp4")
	if err := os.WriteFile(path, []byte("fake video data"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testQuiz() []lesson.QuizItem {
	return []lesson.QuizItem{
		{
			Question: "What pulls objects toward Earth?",
			Options:  []string{"Gravity", "Magnetism", "Friction", "Inertia"},
			Answer:   "Gravity",
		},
	}
}

func TestPublishUploadsAndResolvesURL(t *testing.T) {
	store := &fakeStore{}
	publisher := NewPublisher(store, nil)

	result, err := publisher.Publish(context.Background(), Request{
		VideoPath: writeTestVideo(t),
		Title:     "Gravity Basics",
		Role:      "Student",
		Quiz:      testQuiz(),
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if !keyRegex.MatchString(store.uploadedKey) {
		t.Errorf("uploaded key = %q, want match for %v", store.uploadedKey, keyRegex)
	}
	if store.contentType != "video/mp4" {
		t.Errorf("content type = %q, want video/mp4", store.contentType)
	}
	if string(store.data) != "fake video data" {
		t.Errorf("uploaded data = %q, want original video bytes", store.data)
	}
	if result.VideoURL != "https://videos.example.com/"+store.uploadedKey {
		t.Errorf("VideoURL = %q, want resolved store URL", result.VideoURL)
	}
	if result.InsertErr == nil {
		t.Error("InsertErr = nil, want error when no database is configured")
	}
	if result.Record == nil || result.Record.Title != "Gravity Basics" {
		t.Errorf("Record = %+v, want populated record", result.Record)
	}
}

func TestPublishUploadError(t *testing.T) {
	store := &fakeStore{uploadErr: errors.New("bucket gone")}
	publisher := NewPublisher(store, nil)

	_, err := publisher.Publish(context.Background(), Request{
		VideoPath: writeTestVideo(t),
		Title:     "Gravity Basics",
		Role:      "Student",
	})
	if !errors.Is(err, ErrUploadFailed) {
		t.Errorf("Publish() error = %v, want ErrUploadFailed", err)
	}
}

func TestPublishResolveError(t *testing.T) {
	store := &fakeStore{resolveErr: errors.New("signing denied")}
	publisher := NewPublisher(store, nil)

	_, err := publisher.Publish(context.Background(), Request{
		VideoPath: writeTestVideo(t),
		Title:     "Gravity Basics",
		Role:      "Student",
	})
	if !errors.Is(err, ErrUploadFailed) {
		t.Errorf("Publish() error = %v, want ErrUploadFailed", err)
	}
}

func TestPublishMissingVideoFile(t *testing.T) {
	publisher := NewPublisher(&fakeStore{}, nil)

	_, err := publisher.Publish(context.Background(), Request{
		VideoPath: "/nonexistent/lesson.mp4",
		Title:     "Gravity Basics",
		Role:      "Student",
	})
	if !errors.Is(err, ErrUploadFailed) {
		t.Errorf("Publish() error = %v, want ErrUploadFailed", err)
	}
}

func TestNewRecord(t *testing.T) {
	record := newRecord(Request{
		Title: "Gravity Basics",
		Role:  "Student",
		Quiz:  testQuiz(),
	}, "https://videos.example.com/student_abc.mp4")

	if record.Title != "Gravity Basics" {
		t.Errorf("Title = %q, want %q", record.Title, "Gravity Basics")
	}
	if record.VideoURL != "https://videos.example.com/student_abc.mp4" {
		t.Errorf("VideoURL = %q", record.VideoURL)
	}
	if record.Role != "Student" {
		t.Errorf("Role = %q, want %q", record.Role, "Student")
	}
	if record.QuizQuestion == nil || *record.QuizQuestion != "What pulls objects toward Earth?" {
		t.Errorf("QuizQuestion = %v, want first question", record.QuizQuestion)
	}
	if record.QuizAnswer == nil || *record.QuizAnswer != "Gravity" {
		t.Errorf("QuizAnswer = %v, want %q", record.QuizAnswer, "Gravity")
	}

	var options []string
	if err := json.Unmarshal(record.QuizOptions, &options); err != nil {
		t.Fatalf("QuizOptions unmarshal: %v", err)
	}
	if len(options) != 4 || options[0] != "Gravity" {
		t.Errorf("QuizOptions = %v, want original options", options)
	}
}

func TestNewRecordWithoutQuiz(t *testing.T) {
	record := newRecord(Request{Title: "Gravity Basics", Role: "Student"}, "https://videos.example.com/x.mp4")

	if record.QuizQuestion != nil {
		t.Errorf("QuizQuestion = %v, want nil", record.QuizQuestion)
	}
	if record.QuizOptions != nil {
		t.Errorf("QuizOptions = %v, want nil", record.QuizOptions)
	}
	if record.QuizAnswer != nil {
		t.Errorf("QuizAnswer = %v, want nil", record.QuizAnswer)
	}
}

func TestObjectKey(t *testing.T) {
	key := objectKey("DevOps Engineer")
	if !strings.HasPrefix(key, "devops_engineer_") || !strings.HasSuffix(key, ".mp4") {
		t.Errorf("objectKey() = %q, want devops_engineer_<hex>.mp4", key)
	}

	if objectKey("Student") == objectKey("Student") {
		t.Error("objectKey() returned the same key twice, want unique keys")
	}
}

func TestSanitizeRole(t *testing.T) {
	tests := []struct {
		name string
		role string
		want string
	}{
		{
			name: "simple",
			role: "Student",
			want: "student",
		},
		{
			name: "withSpace",
			role: "DevOps Engineer",
			want: "devops_engineer",
		},
		{
			name: "withSlash",
			role: "QA/Tester",
			want: "qa_tester",
		},
		{
			name: "onlySymbols",
			role: "🔥🔥",
			want: "lesson",
		},
		{
			name: "empty",
			role: "",
			want: "lesson",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeRole(tt.role); got != tt.want {
				t.Errorf("sanitizeRole(%q) = %q, want %q", tt.role, got, tt.want)
			}
		})
	}
}

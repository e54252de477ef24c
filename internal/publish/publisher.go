package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"lessonreel/internal/app/model"
	"lessonreel/internal/lesson"
	"lessonreel/internal/storage"
)

// ErrUploadFailed means the video never reached the object store. Failures
// past that point are reported through Result.InsertErr instead.
var ErrUploadFailed = errors.New("video upload failed")

const videoContentType = "video/mp4"

var sanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Publisher uploads rendered videos and records their metadata.
type Publisher struct {
	store storage.ObjectStore
	db    *gorm.DB
}

func NewPublisher(store storage.ObjectStore, gormDB *gorm.DB) *Publisher {
	return &Publisher{store: store, db: gormDB}
}

type Request struct {
	VideoPath string
	Title     string
	Role      string
	Quiz      []lesson.QuizItem
}

// Result carries the resolved URL plus the database outcome. InsertErr is set
// when the upload succeeded but the metadata insert did not; the video is
// still viewable in that case.
type Result struct {
	VideoURL  string
	Record    *model.VideoRecord
	InsertErr error
}

func (p *Publisher) Publish(ctx context.Context, req Request) (*Result, error) {
	key := objectKey(req.Role)

	f, err := os.Open(req.VideoPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer func() { _ = f.Close() }()

	if err := p.store.Upload(ctx, key, f, videoContentType); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	videoURL, err := p.store.ResolveURL(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	record := newRecord(req, videoURL)
	if p.db == nil {
		return &Result{VideoURL: videoURL, Record: record, InsertErr: errors.New("database not configured")}, nil
	}
	if err := p.db.WithContext(ctx).Create(record).Error; err != nil {
		return &Result{VideoURL: videoURL, Record: record, InsertErr: err}, nil
	}

	return &Result{VideoURL: videoURL, Record: record}, nil
}

func newRecord(req Request, videoURL string) *model.VideoRecord {
	record := &model.VideoRecord{
		Title:    req.Title,
		VideoURL: videoURL,
		Role:     req.Role,
	}

	if len(req.Quiz) == 0 {
		return record
	}

	primary := req.Quiz[0]
	record.QuizQuestion = &primary.Question
	record.QuizAnswer = &primary.Answer
	if options, err := json.Marshal(primary.Options); err == nil {
		record.QuizOptions = datatypes.JSON(options)
	}

	return record
}

func objectKey(role string) string {
	return fmt.Sprintf("%s_%s.mp4", sanitizeRole(role), strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// sanitizeRole keeps object keys URL-safe no matter what the caller sent as
// the audience role.
func sanitizeRole(role string) string {
	sanitized := strings.Trim(sanitizeRegex.ReplaceAllString(strings.ToLower(role), "_"), "_")
	if sanitized == "" {
		return "lesson"
	}
	return sanitized
}

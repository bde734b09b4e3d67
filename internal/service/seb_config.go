package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/edulab/assess-backend/internal/repository"
)

// ErrSebNotRequired is returned when a SEB config is requested for an exam
// that does not enforce the lockdown browser.
var ErrSebNotRequired = errors.New("exam does not require the lockdown browser")

// sebConfigTemplate is the Safe Exam Browser plist shell. The quit button is
// hidden; quitting goes through the seb://quit URL on the exam page instead.
const sebConfigTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>startURL</key>
    <string>%s</string>
    <key>showQuitButton</key>
    <false/>
    <key>allowQuit</key>
    <true/>
    <key>showTaskBar</key>
    <true/>
    <key>showReloadButton</key>
    <true/>
    <key>showTime</key>
    <true/>
    <key>sebServerURL</key>
    <string></string>
    <key>hashedAdminPassword</key>
    <string></string>
    <key>hashedQuitPassword</key>
    <string></string>
    <key>createNewDesktop</key>
    <false/>
    <key>showSideBar</key>
    <false/>
    <key>allowVideoCapture</key>
    <true/>
    <key>allowAudioCapture</key>
    <true/>
    <key>browserMediaStreamApi</key>
    <true/>
</dict>
</plist>`

// SebConfig renders the downloadable .seb file pointing the lockdown browser
// at the exam's frontend page.
func (s *ExamService) SebConfig(ctx context.Context, examID uuid.UUID, frontendURL string) ([]byte, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}
	if !exam.RequiresSeb {
		return nil, ErrSebNotRequired
	}

	examURL := fmt.Sprintf("%s/exams/%s", frontendURL, examID)
	return []byte(fmt.Sprintf(sebConfigTemplate, examURL)), nil
}

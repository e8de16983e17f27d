package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iai-group/arxivdigest-go/modules/digest/ports"
)

// DigestArchiver implements digest/ports.Archiver against S3. It persists
// a JSON audit copy of every dispatched artifact; failure to archive is
// never fatal to dispatch (callers are expected to log and continue).
type DigestArchiver struct {
	s3 *S3Client
}

// NewDigestArchiver creates a new S3-backed digest archiver.
func NewDigestArchiver(s3 *S3Client) *DigestArchiver {
	return &DigestArchiver{s3: s3}
}

// Archive persists artifact under digests/{date}/{user_id}.json.
func (a *DigestArchiver) Archive(ctx context.Context, date string, userID int64, artifact ports.MailArtifact) error {
	body, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("marshal digest artifact: %w", err)
	}

	key := fmt.Sprintf("digests/%s/%d.json", date, userID)
	return a.s3.PutObject(ctx, key, body, "application/json")
}

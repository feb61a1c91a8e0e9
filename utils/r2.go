// utils/r2.go
package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"monadmons-arena/config"
	"monadmons-arena/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var r2Client *s3.Client
var r2Bucket string
var cdnBaseURL string

// InitR2 configures the R2 client. Without credentials archiving is disabled
// and ArchiveBattleLog becomes a no-op.
func InitR2(cfg config.R2Config) error {
	if !cfg.Enabled() {
		r2Client = nil
		return nil
	}
	r2Bucket = cfg.Bucket
	cdnBaseURL = cfg.CDNBaseURL
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	if cdnBaseURL == "" {
		cdnBaseURL = endpoint + "/" + cfg.Bucket
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.AccessKeySecret, "",
		)),
	)
	if err != nil {
		return fmt.Errorf("failed to load R2 config: %w", err)
	}

	r2Client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	return nil
}

// R2Enabled reports whether InitR2 set up a client.
func R2Enabled() bool { return r2Client != nil }

// BattleLogArchive is the JSON document stored for a finished room.
type BattleLogArchive struct {
	RoomID         string        `json:"room_id"`
	MatchID        string        `json:"match_id"`
	Player1Address string        `json:"player1_address"`
	Player2Address string        `json:"player2_address"`
	Player1Card    string        `json:"player1_card,omitempty"`
	Player2Card    string        `json:"player2_card,omitempty"`
	Winner         models.Winner `json:"winner"`
	ActionLog      []string      `json:"action_log"`
	FinishedAt     time.Time     `json:"finished_at"`
}

// BattleLogKey is the object key a room's log is stored under.
func BattleLogKey(room models.Room) string {
	id := room.MatchID
	if id == "" {
		id = room.ID
	}
	return fmt.Sprintf("battle-logs/%s/%s.json", room.UpdatedAt.UTC().Format("2006-01-02"), id)
}

// NewBattleLogArchive flattens a room into its archived form.
func NewBattleLogArchive(room models.Room) BattleLogArchive {
	a := BattleLogArchive{
		RoomID:         room.ID,
		MatchID:        room.MatchID,
		Player1Address: room.Player1Address,
		Player2Address: room.Player2Address,
		Winner:         room.Winner,
		ActionLog:      append([]string{}, room.ActionLog...),
		FinishedAt:     room.UpdatedAt,
	}
	if room.Player1Card != nil {
		a.Player1Card = room.Player1Card.ID
	}
	if room.Player2Card != nil {
		a.Player2Card = room.Player2Card.ID
	}
	return a
}

// ArchiveBattleLog uploads the room's battle log and returns its public URL.
// It returns "" without error when R2 is not configured.
func ArchiveBattleLog(ctx context.Context, room models.Room) (string, error) {
	if r2Client == nil {
		return "", nil
	}
	body, err := json.Marshal(NewBattleLogArchive(room))
	if err != nil {
		return "", fmt.Errorf("failed to encode battle log: %w", err)
	}
	key := BattleLogKey(room)
	_, err = r2Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r2Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}

	url := fmt.Sprintf("%s/%s", cdnBaseURL, key)
	return url, nil
}

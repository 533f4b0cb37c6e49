package data

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/backlot/backlot-api/internal/data/pgxutil"
	"github.com/backlot/backlot-api/internal/domain/model"
	apperrors "github.com/backlot/backlot-api/internal/errors"
)

// MessageRepo provides database operations for per-application message
// threads. The unread counter lives on the application row and moves in the
// same transaction as the message write, mirroring how job progress counters
// move with status changes.
type MessageRepo struct {
	DB           *sql.DB
	cfg          RepoConfig
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewMessageRepo creates a new MessageRepo with the given database connection
// and configuration.
func NewMessageRepo(db *sql.DB, cfg RepoConfig) *MessageRepo {
	return &MessageRepo{
		DB:           db,
		cfg:          cfg,
		timeProvider: cfg.timeProvider(),
		logger:       cfg.logger(),
	}
}

// Send appends a message to the application's thread. Messages sent by anyone
// other than the candidate bump the candidate's unread counter.
func (r *MessageRepo) Send(ctx context.Context, req *model.SendMessageRequest) (*model.Message, error) {
	if req == nil {
		return nil, apperrors.Validation("send request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	msgID := uuid.NewString()

	err := r.runTx(ctx, func(tx pgx.Tx) error {
		app, err := lockApplication(ctx, tx, req.ApplicationID)
		if err != nil {
			return err
		}

		now := r.timeProvider.Now()
		if _, err := tx.Exec(ctx, `
			INSERT INTO messages (id, application_id, sender_id, body, is_read, created_at)
			VALUES ($1, $2, $3, $4, FALSE, $5)
		`, msgID, app.ID, req.SenderID, req.Body, now); err != nil {
			return err
		}

		if req.SenderID != app.CandidateID {
			if _, err := tx.Exec(ctx, `
				UPDATE job_applications
				SET unread_messages = unread_messages + 1, updated_at = $2
				WHERE id = $1
			`, app.ID, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, coordinatorError(err, "message was not sent")
	}

	return r.GetByID(ctx, msgID)
}

// MarkRead marks a single message read and decrements the application's
// unread counter, clamped at zero. Marking an already-read message is a no-op.
func (r *MessageRepo) MarkRead(ctx context.Context, messageID string) error {
	err := r.runTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE messages SET is_read = TRUE
			WHERE id = $1 AND is_read = FALSE
		`, messageID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		_, err = tx.Exec(ctx, `
			UPDATE job_applications
			SET unread_messages = GREATEST(unread_messages - 1, 0),
			    updated_at = $2
			WHERE id = (SELECT application_id FROM messages WHERE id = $1)
		`, messageID, r.timeProvider.Now())
		return err
	})
	if err != nil {
		return coordinatorError(err, "message was not marked read")
	}
	return nil
}

// MarkAllRead marks every message on the thread read and zeroes the unread
// counter.
func (r *MessageRepo) MarkAllRead(ctx context.Context, applicationID string) error {
	err := r.runTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			UPDATE messages SET is_read = TRUE
			WHERE application_id = $1 AND is_read = FALSE
		`, applicationID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			UPDATE job_applications
			SET unread_messages = 0, updated_at = $2
			WHERE id = $1
		`, applicationID, r.timeProvider.Now())
		return err
	})
	if err != nil {
		return coordinatorError(err, "messages were not marked read")
	}
	return nil
}

// UnreadCount returns the unread counter from the application row.
func (r *MessageRepo) UnreadCount(ctx context.Context, applicationID string) (int, error) {
	var count int
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `
			SELECT unread_messages FROM job_applications WHERE id = $1
		`, applicationID).Scan(&count)
	})
	if err != nil {
		if mapped := apperrors.MapDBError(err); apperrors.IsNotFound(mapped) {
			return 0, apperrors.NotFoundf("application %s not found", applicationID)
		}
		return 0, apperrors.Wrap(err, apperrors.ErrCodeInternal, "unread count")
	}
	return count, nil
}

// GetByID retrieves a message by id.
func (r *MessageRepo) GetByID(ctx context.Context, id string) (*model.Message, error) {
	var msg *model.Message
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var scanErr error
		msg, scanErr = scanMessage(conn.QueryRow(ctx, `
			SELECT `+messageColumns+`
			FROM messages
			WHERE id = $1
		`, id))
		return scanErr
	})
	if err != nil {
		if mapped := apperrors.MapDBError(err); apperrors.IsNotFound(mapped) {
			return nil, apperrors.NotFoundf("message %s not found", id)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "get message")
	}
	return msg, nil
}

// ListByApplication returns the thread in send order.
func (r *MessageRepo) ListByApplication(ctx context.Context, applicationID string) ([]*model.Message, error) {
	var msgs []*model.Message
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+messageColumns+`
			FROM messages
			WHERE application_id = $1
			ORDER BY created_at ASC, id ASC
		`, applicationID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			msg, scanErr := scanMessage(rows)
			if scanErr != nil {
				return scanErr
			}
			msgs = append(msgs, msg)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.MapDBError(err), apperrors.ErrCodeInternal, "list messages")
	}
	return msgs, nil
}

// runTx wraps pgxutil.RunTx with the repo's retry policy.
func (r *MessageRepo) runTx(ctx context.Context, fn func(pgx.Tx) error) error {
	return pgxutil.RunTx(ctx, r.DB, pgxutil.RunTxConfig{
		Opts:        &sql.TxOptions{Isolation: sql.LevelReadCommitted},
		MaxAttempts: r.cfg.txMaxAttempts(),
		RetryDelay:  r.cfg.txRetryDelay(),
		Fn:          fn,
	})
}

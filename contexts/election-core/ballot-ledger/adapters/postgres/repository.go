package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"greenballot/contexts/election-core/ballot-ledger/domain/entities"
	domainerrors "greenballot/contexts/election-core/ballot-ledger/domain/errors"
	"greenballot/contexts/election-core/ballot-ledger/ports"
	"greenballot/internal/shared/events"
	"greenballot/internal/shared/outbox"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const uniqueViolationCode = "23505"

// Repository persists the ledger in postgres. The application layer
// linearizes mutating calls; the repository's job is to keep each commit
// atomic, with ApplyVote wrapping its three mutations in one transaction.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// AutoMigrate creates the ledger tables and seeds the system singleton with
// the configured admin. Safe to call on every boot.
func (r *Repository) AutoMigrate(admin string) error {
	if err := r.db.AutoMigrate(
		&systemStateModel{},
		&candidateModel{},
		&voterModel{},
		&sessionModel{},
		&sessionVoterModel{},
		&auditModel{},
	); err != nil {
		return err
	}
	row := systemStateModel{ID: 1, Admin: admin, Active: true}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&row).Error
}

func (r *Repository) SystemState(ctx context.Context) (entities.SystemState, error) {
	var row systemStateModel
	if err := r.db.WithContext(ctx).First(&row, 1).Error; err != nil {
		return entities.SystemState{}, r.logError("ballot_repo_system_state_failed", err)
	}
	return entities.SystemState{Admin: row.Admin, Active: row.Active}, nil
}

func (r *Repository) SetSystemActive(ctx context.Context, active bool, audit *ports.EventEnvelope) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		update := tx.Model(&systemStateModel{}).
			Where("id = ?", 1).
			Update("active", active)
		if update.Error != nil {
			return update.Error
		}
		return appendAuditInTx(tx, audit)
	})
	if err != nil {
		return r.logError("ballot_repo_system_toggle_failed", err)
	}
	return nil
}

func (r *Repository) CandidateCount(ctx context.Context) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&candidateModel{}).Count(&count).Error; err != nil {
		return 0, r.logError("ballot_repo_candidate_count_failed", err)
	}
	return int(count), nil
}

func (r *Repository) GetCandidate(ctx context.Context, id int) (entities.Candidate, error) {
	var row candidateModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Candidate{}, domainerrors.ErrInvalidCandidateID
		}
		return entities.Candidate{}, r.logError("ballot_repo_candidate_get_failed", err, "candidate_id", id)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListCandidates(ctx context.Context) ([]entities.Candidate, error) {
	var rows []candidateModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("ballot_repo_candidate_list_failed", err)
	}
	items := make([]entities.Candidate, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AppendCandidate(ctx context.Context, candidate entities.Candidate, audit *ports.EventEnvelope) (entities.Candidate, error) {
	var created entities.Candidate
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&candidateModel{}).Count(&count).Error; err != nil {
			return err
		}
		row := candidateModel{
			ID:        int(count) + 1,
			Name:      candidate.Name,
			Party:     candidate.Party,
			Platform:  candidate.Platform,
			VoteCount: 0,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if err := appendAuditInTx(tx, audit); err != nil {
			return err
		}
		created = row.toEntity()
		return nil
	})
	if err != nil {
		return entities.Candidate{}, r.logError("ballot_repo_candidate_append_failed", err)
	}
	return created, nil
}

func (r *Repository) VoterCount(ctx context.Context) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&voterModel{}).Count(&count).Error; err != nil {
		return 0, r.logError("ballot_repo_voter_count_failed", err)
	}
	return int(count), nil
}

func (r *Repository) GetVoter(ctx context.Context, principal string) (entities.Voter, bool, error) {
	var row voterModel
	err := r.db.WithContext(ctx).Where("principal = ?", principal).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Voter{}, false, nil
		}
		return entities.Voter{}, false, r.logError("ballot_repo_voter_get_failed", err, "principal", principal)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) PutVoter(ctx context.Context, voter entities.Voter, audit *ports.EventEnvelope) error {
	row := voterModelFromEntity(voter)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "principal"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":               row.Name,
				"nationality":        row.Nationality,
				"age":                row.Age,
				"lga":                row.LGA,
				"registered":         row.Registered,
				"has_voted":          row.HasVoted,
				"voted_candidate_id": row.VotedCandidateID,
			}),
		}).Create(&row).Error; err != nil {
			return err
		}
		return appendAuditInTx(tx, audit)
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return domainerrors.ErrVoterAlreadyRegistered
		}
		return r.logError("ballot_repo_voter_put_failed", err, "principal", voter.Principal)
	}
	return nil
}

func (r *Repository) DeleteVoter(ctx context.Context, principal string, audit *ports.EventEnvelope) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		del := tx.Where("principal = ?", principal).Delete(&voterModel{})
		if del.Error != nil {
			return del.Error
		}
		if del.RowsAffected == 0 {
			return domainerrors.ErrVoterNotRegistered
		}
		return appendAuditInTx(tx, audit)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrVoterNotRegistered) {
			return err
		}
		return r.logError("ballot_repo_voter_delete_failed", err, "principal", principal)
	}
	return nil
}

func (r *Repository) SessionCount(ctx context.Context) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&sessionModel{}).Count(&count).Error; err != nil {
		return 0, r.logError("ballot_repo_session_count_failed", err)
	}
	return int(count), nil
}

func (r *Repository) GetSession(ctx context.Context, id int) (entities.Session, error) {
	var row sessionModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Session{}, domainerrors.ErrInvalidSessionID
		}
		return entities.Session{}, r.logError("ballot_repo_session_get_failed", err, "session_id", id)
	}
	var voterRows []sessionVoterModel
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", id).
		Order("position ASC").
		Find(&voterRows).Error; err != nil {
		return entities.Session{}, r.logError("ballot_repo_session_voters_failed", err, "session_id", id)
	}
	session := row.toEntity()
	session.Voters = make([]string, 0, len(voterRows))
	for _, voterRow := range voterRows {
		session.Voters = append(session.Voters, voterRow.Principal)
	}
	session.TotalVotes = len(session.Voters)
	return session, nil
}

func (r *Repository) AppendSession(ctx context.Context, session entities.Session, audit *ports.EventEnvelope) (entities.Session, error) {
	var created entities.Session
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&sessionModel{}).Count(&count).Error; err != nil {
			return err
		}
		row := sessionModel{
			ID:        int(count) + 1,
			Name:      session.Name,
			StartTime: session.StartTime.UTC(),
			EndTime:   session.EndTime.UTC(),
			Active:    true,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if err := appendAuditInTx(tx, audit); err != nil {
			return err
		}
		created = row.toEntity()
		created.Voters = []string{}
		return nil
	})
	if err != nil {
		return entities.Session{}, r.logError("ballot_repo_session_append_failed", err)
	}
	return created, nil
}

func (r *Repository) SetSessionActive(ctx context.Context, id int, active bool) error {
	update := r.db.WithContext(ctx).
		Model(&sessionModel{}).
		Where("id = ?", id).
		Update("active", active)
	if update.Error != nil {
		return r.logError("ballot_repo_session_toggle_failed", update.Error, "session_id", id)
	}
	if update.RowsAffected == 0 {
		return domainerrors.ErrInvalidSessionID
	}
	return nil
}

// ApplyVote performs the candidate increment, voter mark, roster append, and
// audit row insert as one transaction; a failure at any step rolls all of
// them back.
func (r *Repository) ApplyVote(ctx context.Context, principal string, candidateID int, sessionID int, audit *ports.EventEnvelope) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var voter voterModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("principal = ?", principal).
			First(&voter).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrVoterNotRegistered
			}
			return err
		}
		if voter.HasVoted {
			return domainerrors.ErrAlreadyVoted
		}

		increment := tx.Model(&candidateModel{}).
			Where("id = ?", candidateID).
			Update("vote_count", gorm.Expr("vote_count + 1"))
		if increment.Error != nil {
			return increment.Error
		}
		if increment.RowsAffected == 0 {
			return domainerrors.ErrInvalidCandidateID
		}

		if err := tx.Model(&voterModel{}).
			Where("principal = ?", principal).
			Updates(map[string]any{
				"has_voted":          true,
				"voted_candidate_id": candidateID,
			}).Error; err != nil {
			return err
		}

		var rosterCount int64
		if err := tx.Model(&sessionVoterModel{}).
			Where("session_id = ?", sessionID).
			Count(&rosterCount).Error; err != nil {
			return err
		}
		if err := tx.Create(&sessionVoterModel{
			SessionID: sessionID,
			Principal: principal,
			Position:  int(rosterCount) + 1,
		}).Error; err != nil {
			return err
		}

		update := tx.Model(&sessionModel{}).
			Where("id = ?", sessionID).
			Update("total_votes", gorm.Expr("total_votes + 1"))
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return domainerrors.ErrInvalidSessionID
		}
		return appendAuditInTx(tx, audit)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrVoterNotRegistered) ||
			errors.Is(err, domainerrors.ErrAlreadyVoted) ||
			errors.Is(err, domainerrors.ErrInvalidCandidateID) ||
			errors.Is(err, domainerrors.ErrInvalidSessionID) {
			return err
		}
		return r.logError("ballot_repo_apply_vote_failed", err,
			"principal", principal,
			"candidate_id", candidateID,
			"session_id", sessionID,
		)
	}
	return nil
}

func (r *Repository) TotalVotes(ctx context.Context) (int, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&candidateModel{}).
		Select("COALESCE(SUM(vote_count), 0)").
		Scan(&total).Error; err != nil {
		return 0, r.logError("ballot_repo_total_votes_failed", err)
	}
	return int(total), nil
}

func (r *Repository) AppendAudit(ctx context.Context, envelope ports.EventEnvelope) error {
	if err := appendAuditInTx(r.db.WithContext(ctx), &envelope); err != nil {
		return r.logError("ballot_repo_audit_append_failed", err,
			"event_type", envelope.EventType,
		)
	}
	return nil
}

// appendAuditInTx marshals the wire payload and inserts the outbox row on
// the given handle, so mutating methods can bind it into their transaction.
// A nil envelope is a no-op.
func appendAuditInTx(tx *gorm.DB, envelope *ports.EventEnvelope) error {
	if envelope == nil {
		return nil
	}
	auditID := envelope.EventID
	if auditID == "" {
		auditID = uuid.NewString()
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	payload, err := json.Marshal(events.Envelope{
		EventID:       auditID,
		EventType:     envelope.EventType,
		SourceService: events.SourceBallotLedger,
		OccurredAtUTC: createdAt,
		EntityType:    envelope.EntityType,
		EntityID:      envelope.EntityID,
		Payload:       envelope.Data,
	})
	if err != nil {
		return err
	}
	row := auditModel{
		AuditID:   auditID,
		EventType: envelope.EventType,
		EntityID:  envelope.EntityID,
		Payload:   payload,
		Status:    outbox.StatusPending,
		CreatedAt: createdAt,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "audit_id"}},
		DoNothing: true,
	}).Create(&row).Error
}

func (r *Repository) ListPendingAudit(ctx context.Context, limit int) ([]ports.AuditMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []auditModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outbox.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("ballot_repo_audit_list_failed", err)
	}
	items := make([]ports.AuditMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.AuditMessage{
			AuditID:   row.AuditID,
			EventType: row.EventType,
			EntityID:  row.EntityID,
			Payload:   row.Payload,
			CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkAuditPublished(ctx context.Context, auditID string, publishedAt time.Time) error {
	update := r.db.WithContext(ctx).
		Model(&auditModel{}).
		Where("audit_id = ?", auditID).
		Updates(map[string]any{
			"status":       outbox.StatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if update.Error != nil {
		return r.logError("ballot_repo_audit_mark_failed", update.Error, "audit_id", auditID)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "election-core/ballot-ledger",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("ballot repository operation failed", fields...)
	return err
}

// SystemClock satisfies ports.Clock with wall time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// UUIDGenerator satisfies ports.IDGenerator with random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

type systemStateModel struct {
	ID     int    `gorm:"column:id;primaryKey"`
	Admin  string `gorm:"column:admin"`
	Active bool   `gorm:"column:active"`
}

func (systemStateModel) TableName() string {
	return "ballot_system_state"
}

type candidateModel struct {
	ID        int    `gorm:"column:id;primaryKey"`
	Name      string `gorm:"column:name"`
	Party     string `gorm:"column:party"`
	Platform  string `gorm:"column:platform"`
	VoteCount int    `gorm:"column:vote_count"`
}

func (candidateModel) TableName() string {
	return "ballot_candidates"
}

func (m candidateModel) toEntity() entities.Candidate {
	return entities.Candidate{
		ID:        m.ID,
		Name:      m.Name,
		Party:     m.Party,
		Platform:  m.Platform,
		VoteCount: m.VoteCount,
	}
}

type voterModel struct {
	Principal        string `gorm:"column:principal;primaryKey"`
	Name             string `gorm:"column:name"`
	Nationality      string `gorm:"column:nationality"`
	Age              int    `gorm:"column:age"`
	LGA              string `gorm:"column:lga"`
	Registered       bool   `gorm:"column:registered"`
	HasVoted         bool   `gorm:"column:has_voted"`
	VotedCandidateID int    `gorm:"column:voted_candidate_id"`
}

func (voterModel) TableName() string {
	return "ballot_voters"
}

func voterModelFromEntity(voter entities.Voter) voterModel {
	return voterModel{
		Principal:        voter.Principal,
		Name:             voter.Name,
		Nationality:      voter.Nationality,
		Age:              voter.Age,
		LGA:              voter.LGA,
		Registered:       voter.Registered,
		HasVoted:         voter.HasVoted,
		VotedCandidateID: voter.VotedCandidateID,
	}
}

func (m voterModel) toEntity() entities.Voter {
	return entities.Voter{
		Principal:        m.Principal,
		Name:             m.Name,
		Nationality:      m.Nationality,
		Age:              m.Age,
		LGA:              m.LGA,
		Registered:       m.Registered,
		HasVoted:         m.HasVoted,
		VotedCandidateID: m.VotedCandidateID,
	}
}

type sessionModel struct {
	ID         int       `gorm:"column:id;primaryKey"`
	Name       string    `gorm:"column:name"`
	StartTime  time.Time `gorm:"column:start_time"`
	EndTime    time.Time `gorm:"column:end_time"`
	Active     bool      `gorm:"column:active"`
	TotalVotes int       `gorm:"column:total_votes"`
}

func (sessionModel) TableName() string {
	return "ballot_sessions"
}

func (m sessionModel) toEntity() entities.Session {
	return entities.Session{
		ID:         m.ID,
		Name:       m.Name,
		StartTime:  m.StartTime.UTC(),
		EndTime:    m.EndTime.UTC(),
		Active:     m.Active,
		TotalVotes: m.TotalVotes,
	}
}

type sessionVoterModel struct {
	SessionID int    `gorm:"column:session_id;primaryKey"`
	Position  int    `gorm:"column:position;primaryKey"`
	Principal string `gorm:"column:principal"`
}

func (sessionVoterModel) TableName() string {
	return "ballot_session_voters"
}

type auditModel struct {
	AuditID     string     `gorm:"column:audit_id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	EntityID    string     `gorm:"column:entity_id"`
	Payload     []byte     `gorm:"column:payload"`
	Status      string     `gorm:"column:status"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (auditModel) TableName() string {
	return "ballot_audit_outbox"
}

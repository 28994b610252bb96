package postgres

import (
	"time"

	"millionaire-service/internal/domain"

	"github.com/uptrace/bun"
)

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string    `bun:"id,pk"`
	Name         string    `bun:"name,notnull"`
	Email        string    `bun:"email,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Balance      int64     `bun:"balance,notnull"`
	IsAdmin      bool      `bun:"is_admin,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions,alias:q"`

	ID        string    `bun:"id,pk"`
	Level     int       `bun:"level,notnull"`
	Text      string    `bun:"text,notnull"`
	Answer1   string    `bun:"answer1,notnull"`
	Answer2   string    `bun:"answer2,notnull"`
	Answer3   string    `bun:"answer3,notnull"`
	Answer4   string    `bun:"answer4,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

type gameRow struct {
	bun.BaseModel `bun:"table:games,alias:g"`

	ID               string     `bun:"id,pk"`
	UserID           string     `bun:"user_id,notnull"`
	CurrentLevel     int        `bun:"current_level,notnull"`
	IsFailed         bool       `bun:"is_failed,notnull"`
	FinishedAt       *time.Time `bun:"finished_at"`
	Prize            int64      `bun:"prize,notnull"`
	AudienceHelpUsed bool       `bun:"audience_help_used,notnull"`
	FiftyFiftyUsed   bool       `bun:"fifty_fifty_used,notnull"`
	FriendCallUsed   bool       `bun:"friend_call_used,notnull"`
	CreatedAt        time.Time  `bun:"created_at,notnull"`
	UpdatedAt        time.Time  `bun:"updated_at,notnull"`

	Questions []*gameQuestionRow `bun:"rel:has-many,join:id=game_id"`
}

type gameQuestionRow struct {
	bun.BaseModel `bun:"table:game_questions,alias:gq"`

	ID         string             `bun:"id,pk"`
	GameID     string             `bun:"game_id,notnull"`
	QuestionID string             `bun:"question_id,notnull"`
	Level      int                `bun:"level,notnull"`
	A          int                `bun:"a,notnull"`
	B          int                `bun:"b,notnull"`
	C          int                `bun:"c,notnull"`
	D          int                `bun:"d,notnull"`
	Help       domain.HelpPayload `bun:"help,type:jsonb,notnull"`

	Question *questionRow `bun:"rel:belongs-to,join:question_id=id"`
}

func toUserRow(u *domain.User) *userRow {
	return &userRow{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Balance:      u.Balance,
		IsAdmin:      u.IsAdmin,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r *userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Balance:      r.Balance,
		IsAdmin:      r.IsAdmin,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toQuestionRow(q *domain.Question) *questionRow {
	return &questionRow{
		ID:        q.ID,
		Level:     q.Level,
		Text:      q.Text,
		Answer1:   q.Answer1,
		Answer2:   q.Answer2,
		Answer3:   q.Answer3,
		Answer4:   q.Answer4,
		CreatedAt: q.CreatedAt,
	}
}

func (r *questionRow) toDomain() domain.Question {
	return domain.Question{
		ID:        r.ID,
		Level:     r.Level,
		Text:      r.Text,
		Answer1:   r.Answer1,
		Answer2:   r.Answer2,
		Answer3:   r.Answer3,
		Answer4:   r.Answer4,
		CreatedAt: r.CreatedAt,
	}
}

func toGameRow(g *domain.Game) *gameRow {
	row := &gameRow{
		ID:               g.ID,
		UserID:           g.UserID,
		CurrentLevel:     g.CurrentLevel,
		IsFailed:         g.IsFailed,
		FinishedAt:       g.FinishedAt,
		Prize:            g.Prize,
		AudienceHelpUsed: g.HelpsUsed.Has(domain.HelpAudience),
		FiftyFiftyUsed:   g.HelpsUsed.Has(domain.HelpFiftyFifty),
		FriendCallUsed:   g.HelpsUsed.Has(domain.HelpFriendCall),
		CreatedAt:        g.CreatedAt,
		UpdatedAt:        g.UpdatedAt,
	}
	for _, gq := range g.Questions {
		row.Questions = append(row.Questions, toGameQuestionRow(gq))
	}
	return row
}

func toGameQuestionRow(gq domain.GameQuestion) *gameQuestionRow {
	return &gameQuestionRow{
		ID:         gq.ID,
		GameID:     gq.GameID,
		QuestionID: gq.QuestionID,
		Level:      gq.Level(),
		A:          gq.Mapping[0],
		B:          gq.Mapping[1],
		C:          gq.Mapping[2],
		D:          gq.Mapping[3],
		Help:       gq.Help,
	}
}

func (r *gameRow) toDomain() *domain.Game {
	g := &domain.Game{
		ID:           r.ID,
		UserID:       r.UserID,
		CurrentLevel: r.CurrentLevel,
		IsFailed:     r.IsFailed,
		FinishedAt:   r.FinishedAt,
		Prize:        r.Prize,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	used := map[domain.HelpKind]bool{
		domain.HelpAudience:   r.AudienceHelpUsed,
		domain.HelpFiftyFifty: r.FiftyFiftyUsed,
		domain.HelpFriendCall: r.FriendCallUsed,
	}
	for _, kind := range domain.HelpKinds {
		if used[kind] {
			g.HelpsUsed.Add(kind)
		}
	}
	for _, q := range r.Questions {
		gq := domain.GameQuestion{
			ID:         q.ID,
			GameID:     q.GameID,
			QuestionID: q.QuestionID,
			Mapping:    [4]int{q.A, q.B, q.C, q.D},
			Help:       q.Help,
		}
		if q.Question != nil {
			gq.Question = q.Question.toDomain()
		}
		g.Questions = append(g.Questions, gq)
	}
	return g
}

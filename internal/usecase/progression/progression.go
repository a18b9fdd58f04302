package progression

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"streak_hub/internal/domain/progression"
	userDomain "streak_hub/internal/domain/user"
	repo "streak_hub/internal/repository"
)

type UserStorage interface {
	GetUserByID(ctx context.Context, id string) (userDomain.User, error)
	UpdateUser(ctx context.Context, u userDomain.User) error
	AddAchievement(ctx context.Context, a userDomain.Achievement) error
	GetAchievementsByUser(ctx context.Context, userID string) ([]userDomain.Achievement, error)
}

type LeaderboardStorage interface {
	UpdateScore(ctx context.Context, userID string, streak int, xp int) error
	Remove(ctx context.Context, userID string) error
	Top(ctx context.Context, n int) ([]repo.LeaderboardEntry, error)
}

type Clock func() time.Time

type ProgressionUseCase struct {
	log         *zap.SugaredLogger
	users       UserStorage
	leaderboard LeaderboardStorage
	now         Clock

	// userLocks serializes session logging per user id so that streak
	// calculation and persistence form one atomic step.
	userLocksMu sync.Mutex
	userLocks   map[string]*sync.Mutex
}

func NewProgressionUseCase(log *zap.SugaredLogger, users UserStorage, leaderboard LeaderboardStorage) *ProgressionUseCase {
	return &ProgressionUseCase{
		log:         log,
		users:       users,
		leaderboard: leaderboard,
		now:         time.Now,
		userLocks:   make(map[string]*sync.Mutex),
	}
}

// SetClock overrides the wall clock, tests only.
func (p *ProgressionUseCase) SetClock(c Clock) {
	p.now = c
}

type SessionResponse struct {
	User            userDomain.User          `json:"user"`
	XPGained        int                      `json:"xp_gained"`
	LeveledUp       bool                     `json:"leveled_up"`
	NewAchievements []userDomain.Achievement `json:"new_achievements"`
	CurrentLevelXP  int                      `json:"current_level_xp"`
	NextLevelXP     int                      `json:"next_level_xp"`
}

func (p *ProgressionUseCase) lockFor(userID string) *sync.Mutex {
	p.userLocksMu.Lock()
	defer p.userLocksMu.Unlock()
	l, ok := p.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		p.userLocks[userID] = l
	}
	return l
}

// LogSession applies one completed session to the user: streak decision,
// XP/level updates, milestone achievements, counters, leaderboard entry.
func (p *ProgressionUseCase) LogSession(ctx context.Context, userID string, payload progression.SessionPayload) (*SessionResponse, error) {
	lock := p.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	u, err := p.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	outcome := progression.ApplySession(u, p.now(), payload)

	if err = p.users.UpdateUser(ctx, outcome.User); err != nil {
		return nil, err
	}
	for _, a := range outcome.NewAchievements {
		if err = p.users.AddAchievement(ctx, a); err != nil {
			return nil, err
		}
	}

	if outcome.User.ShowOnLeaderboard {
		if err = p.leaderboard.UpdateScore(ctx, outcome.User.ID, outcome.User.CurrentStreak, outcome.User.XPPoints); err != nil {
			// the session itself is committed, the board catches up on the
			// next log
			p.log.Errorf("leaderboard update failed for %s: %v", outcome.User.ID, err)
		}
	}

	return &SessionResponse{
		User:            outcome.User,
		XPGained:        outcome.XPGained,
		LeveledUp:       outcome.LeveledUp,
		NewAchievements: outcome.NewAchievements,
		CurrentLevelXP:  outcome.CurrentLevelXP,
		NextLevelXP:     outcome.NextLevelXP,
	}, nil
}

// GrantXP credits a standalone XP delta (admin corrections, achievement
// backfills) through the same atomic path as session logging.
func (p *ProgressionUseCase) GrantXP(ctx context.Context, userID string, delta int) (userDomain.User, bool, error) {
	lock := p.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	u, err := p.users.GetUserByID(ctx, userID)
	if err != nil {
		return userDomain.User{}, false, err
	}

	leveledUp := progression.GrantXP(&u, delta)
	u.UpdatedAt = p.now()

	if err = p.users.UpdateUser(ctx, u); err != nil {
		return userDomain.User{}, false, err
	}
	if u.ShowOnLeaderboard {
		if err = p.leaderboard.UpdateScore(ctx, u.ID, u.CurrentStreak, u.XPPoints); err != nil {
			p.log.Errorf("leaderboard update failed for %s: %v", u.ID, err)
		}
	}
	return u, leveledUp, nil
}

type PrivacyUpdate struct {
	IsAnonymous       *bool `json:"is_anonymous,omitempty"`
	ShowOnLeaderboard *bool `json:"show_on_leaderboard,omitempty"`
}

func (p *ProgressionUseCase) UpdatePrivacy(ctx context.Context, userID string, upd PrivacyUpdate) (userDomain.User, error) {
	lock := p.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	u, err := p.users.GetUserByID(ctx, userID)
	if err != nil {
		return userDomain.User{}, err
	}

	if upd.IsAnonymous != nil {
		u.IsAnonymous = *upd.IsAnonymous
	}
	if upd.ShowOnLeaderboard != nil {
		u.ShowOnLeaderboard = *upd.ShowOnLeaderboard
	}
	u.UpdatedAt = p.now()

	if err = p.users.UpdateUser(ctx, u); err != nil {
		return userDomain.User{}, err
	}

	if u.ShowOnLeaderboard {
		err = p.leaderboard.UpdateScore(ctx, u.ID, u.CurrentStreak, u.XPPoints)
	} else {
		err = p.leaderboard.Remove(ctx, u.ID)
	}
	if err != nil {
		p.log.Errorf("leaderboard sync failed for %s: %v", u.ID, err)
	}

	return u, nil
}

type LeaderboardRow struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Streak   int    `json:"streak"`
	XPPoints int    `json:"xp_points"`
	Level    int    `json:"level"`
	Title    string `json:"title"`
}

// Leaderboard returns the top n visible users, streak-first then XP. Users
// flagged anonymous keep their rank but lose their name.
func (p *ProgressionUseCase) Leaderboard(ctx context.Context, n int) ([]LeaderboardRow, error) {
	entries, err := p.leaderboard.Top(ctx, n)
	if err != nil {
		return nil, err
	}

	rows := make([]LeaderboardRow, 0, len(entries))
	for _, e := range entries {
		u, err := p.users.GetUserByID(ctx, e.UserID)
		if err != nil {
			// stale board entry, skip rather than fail the whole query
			p.log.Warnf("leaderboard entry for missing user %s", e.UserID)
			continue
		}
		if !u.ShowOnLeaderboard {
			continue
		}
		name := u.Username
		if u.IsAnonymous {
			name = "Anonymous"
		}
		// ranks number the visible rows, a skipped entry leaves no gap
		rows = append(rows, LeaderboardRow{
			Rank:     len(rows) + 1,
			UserID:   u.ID,
			Username: name,
			Streak:   e.Streak,
			XPPoints: e.XP,
			Level:    u.Level,
			Title:    u.Title,
		})
	}
	return rows, nil
}

func (p *ProgressionUseCase) GetAchievements(ctx context.Context, userID string) ([]userDomain.Achievement, error) {
	return p.users.GetAchievementsByUser(ctx, userID)
}

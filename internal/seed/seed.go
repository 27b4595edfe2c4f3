// Package seed 生成一个可以直接演示的营地：房间、床位、营员、教职员、课程和餐次
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/campops-dev/camp-manager/backend/internal/domain"
	"github.com/campops-dev/camp-manager/backend/internal/utils"
	"github.com/jackc/pgx/v5/pgconn"
)

type Store interface {
	CreateCamp(ctx context.Context, camp *domain.Camp) error
	CreateRoom(ctx context.Context, room *domain.Room) error
	CreateBed(ctx context.Context, bed *domain.Bed) error
	CreateGuest(ctx context.Context, guest *domain.Guest) error
	CreateStaff(ctx context.Context, staff *domain.Staff) error
	CreateLesson(ctx context.Context, lesson *domain.Lesson) error
	CreateMealSitting(ctx context.Context, sitting *domain.MealSitting) error
	ReplaceLessonStaff(ctx context.Context, campID, lessonID int64, staffIDs []int64) (*domain.LessonStaffChange, error)
}

type Options struct {
	CampName   string
	Staff      int
	Guests     int
	UserDomain string
	// Today 决定餐次的服务日期，按营地所在时区计算
	Today time.Time
}

type Summary struct {
	Camp     domain.Camp
	Beds     int
	Guests   int
	Staff    []*domain.Staff
	Lessons  int
	Sittings int
	// Director 用于给演示环境签发令牌，没有生成营地主任时为 nil
	Director *domain.Staff
}

var roomNames = []string{"松林屋", "湖畔屋", "星空屋"}
var bedLabels = []string{"A", "B", "C"}
var lessonTitles = []string{"皮划艇", "攀岩", "野外生存", "天文观测"}

type sittingTemplate struct {
	name   string
	cutoff domain.TimeOfDay
	reset  *domain.TimeOfDay
}

func sittingTemplates() []sittingTemplate {
	dinnerReset := domain.NewTimeOfDay(21, 0, 0)
	return []sittingTemplate{
		{name: "早餐", cutoff: domain.NewTimeOfDay(6, 30, 0)},
		{name: "午餐", cutoff: domain.NewTimeOfDay(10, 30, 0)},
		{name: "晚餐", cutoff: domain.NewTimeOfDay(16, 0, 0), reset: &dinnerReset},
	}
}

// 用户名由拼音随机生成，冲突时重新生成
const maxUsernameAttempts = 5

func isDuplicateUsername(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.ConstraintName == "staff_username_key"
}

func Run(ctx context.Context, store Store, opts Options) (*Summary, error) {
	summary := &Summary{Camp: domain.Camp{Name: opts.CampName}}
	if err := store.CreateCamp(ctx, &summary.Camp); err != nil {
		return nil, fmt.Errorf("create camp: %w", err)
	}
	campID := summary.Camp.ID

	for _, roomName := range roomNames {
		room := &domain.Room{CampID: campID, Name: roomName}
		if err := store.CreateRoom(ctx, room); err != nil {
			return nil, fmt.Errorf("create room %s: %w", roomName, err)
		}
		for _, label := range bedLabels {
			bed := &domain.Bed{CampID: campID, RoomID: room.ID, Label: label, Capacity: int32(rand.Intn(4) + 1)}
			if err := store.CreateBed(ctx, bed); err != nil {
				return nil, fmt.Errorf("create bed %s/%s: %w", roomName, label, err)
			}
			summary.Beds++
		}
	}

	for i := 0; i < opts.Guests; i++ {
		if err := store.CreateGuest(ctx, utils.GenerateRandomGuest(campID)); err != nil {
			return nil, fmt.Errorf("create guest: %w", err)
		}
		summary.Guests++
	}

	for i := 0; i < opts.Staff; i++ {
		// 第一位教职员固定为营地主任，保证演示环境可以调用管理接口
		role := utils.GenerateRandomRole()
		if i == 0 {
			role = domain.RoleDirector
		}
		staff, err := createStaff(ctx, store, campID, opts.UserDomain, role)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			summary.Director = staff
		}
		summary.Staff = append(summary.Staff, staff)
	}

	for _, title := range lessonTitles {
		lesson := &domain.Lesson{CampID: campID, Title: title}
		if err := store.CreateLesson(ctx, lesson); err != nil {
			return nil, fmt.Errorf("create lesson %s: %w", title, err)
		}
		if _, err := store.ReplaceLessonStaff(ctx, campID, lesson.ID, pickStaff(summary.Staff)); err != nil {
			return nil, fmt.Errorf("assign staff to lesson %s: %w", title, err)
		}
		summary.Lessons++
	}

	for _, day := range []time.Time{opts.Today, opts.Today.AddDate(0, 0, 1)} {
		for _, tmpl := range sittingTemplates() {
			sitting := &domain.MealSitting{
				CampID:          campID,
				Name:            tmpl.name,
				ServiceDate:     day.Format(domain.DateLayout),
				CutoffEnabled:   true,
				CutoffTime:      tmpl.cutoff,
				IsBookingActive: true,
			}
			if tmpl.reset != nil {
				sitting.ResetEnabled = true
				sitting.ResetTime = *tmpl.reset
			}
			if err := utils.ValidateMealSitting(sitting); err != nil {
				return nil, err
			}
			if err := store.CreateMealSitting(ctx, sitting); err != nil {
				return nil, fmt.Errorf("create meal sitting %s %s: %w", sitting.ServiceDate, sitting.Name, err)
			}
			summary.Sittings++
		}
	}

	return summary, nil
}

func createStaff(ctx context.Context, store Store, campID int64, userDomain string, role domain.Role) (*domain.Staff, error) {
	for attempt := 0; attempt < maxUsernameAttempts; attempt++ {
		staff := utils.GenerateRandomStaff(campID, userDomain)
		staff.Role = role
		err := store.CreateStaff(ctx, staff)
		if err == nil {
			return staff, nil
		}
		if !isDuplicateUsername(err) {
			return nil, fmt.Errorf("create staff: %w", err)
		}
		slog.Warn("用户名已存在，重新生成", "username", staff.Username)
	}

	return nil, fmt.Errorf("create staff: no free username after %d attempts", maxUsernameAttempts)
}

// pickStaff 随机挑选一到三名教职员
func pickStaff(staff []*domain.Staff) []int64 {
	if len(staff) == 0 {
		return []int64{}
	}

	n := rand.Intn(min(3, len(staff))) + 1
	ids := make([]int64, 0, n)
	for _, i := range rand.Perm(len(staff))[:n] {
		ids = append(ids, staff[i].ID)
	}
	return ids
}

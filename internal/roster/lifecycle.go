package roster

import (
	"sort"
	"time"

	"github.com/sysu-ecnc-dev/store-roster/backend/internal/domain"
)

// MarkReady 将排班表标记为已发布
// 从草稿到已发布是一次真正的状态迁移，返回 true，调用方需要据此触发通知；
// 已发布的排班表再次标记是幂等的，返回 false，不会重复通知
func MarkReady(s *domain.Schedule, actorID int64, now time.Time) bool {
	transitioned := s.Status == domain.ScheduleStatusDraft

	s.Status = domain.ScheduleStatusReady
	s.LastActorID = &actorID
	s.StatusChangedAt = &now

	return transitioned
}

// MarkNotReady 将已发布的排班表撤回为草稿，用于发布后发现错误需要修改的情况
// 撤回不会重新通知员工
func MarkNotReady(s *domain.Schedule, actorID int64, now time.Time) bool {
	transitioned := s.Status == domain.ScheduleStatusReady

	s.Status = domain.ScheduleStatusDraft
	s.LastActorID = &actorID
	s.StatusChangedAt = &now

	return transitioned
}

// NotifyRecipients 返回排班表中所有有排班记录的员工 ID，去重并升序排列
// 发布时每个员工只通知一次
func NotifyRecipients(set *AssignmentSet) []int64 {
	seen := make(map[int64]bool)
	recipients := []int64{}

	for _, a := range set.Assignments() {
		if seen[a.UserID] {
			continue
		}
		seen[a.UserID] = true
		recipients = append(recipients, a.UserID)
	}

	sort.Slice(recipients, func(i, j int) bool {
		return recipients[i] < recipients[j]
	})

	return recipients
}

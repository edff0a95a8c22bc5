package service

import "time"

// SetClock 替换 DraftService 的时钟
func (s *DraftService) SetClock(fn func() time.Time) { s.now = fn }

var CalculateDraftInterval = calculateDraftInterval

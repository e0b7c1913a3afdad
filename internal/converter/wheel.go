package converter

import (
	dto "prize_wheel/internal/api/dto/wheel"
	"prize_wheel/internal/model"
)

func ToStateResponse(s model.GameSnapshot) dto.StateResponse {
	return dto.StateResponse{
		State:        s.State,
		Phase:        s.Phase.String(),
		Angle:        s.Angle,
		WheelY:       s.WheelY,
		Balance:      s.Balance,
		Winnings:     s.Winnings,
		Bet:          s.Bet,
		PickedSlice:  sliceRef(s.PickedSlice),
		TargetSlice:  sliceRef(s.TargetSlice),
		LandedSlice:  sliceRef(s.LandedSlice),
		BangupActive: s.BangupActive,
	}
}

func ToEvent(e model.Event) dto.Event {
	out := dto.Event{
		Type:       string(e.Type),
		State:      e.State,
		Effect:     e.Effect,
		Sound:      e.Sound,
		DurationMs: e.Duration.Milliseconds(),
		At:         e.At.UnixMilli(),
	}
	switch e.Type {
	case model.EventLanded:
		out.Slice = sliceRef(e.Slice)
		out.Credit = e.Credit
	case model.EventBalance:
		balance, winnings := e.Balance, e.Winnings
		out.Balance = &balance
		out.Winnings = &winnings
	}
	return out
}

func ToStatsResponse(s model.WheelStats) dto.StatsResponse {
	slices := make([]dto.SliceStats, len(s.Slices))
	for i, sl := range s.Slices {
		slices[i] = dto.SliceStats{
			Index:    sl.Index,
			Credit:   sl.Credit,
			Hits:     sl.Hits,
			Expected: sl.Expected,
			Observed: sl.Observed,
		}
	}
	return dto.StatsResponse{
		TotalSpins:  s.TotalSpins,
		TotalBet:    s.TotalBet,
		TotalPayout: s.TotalPayout,
		RTP:         s.RTP,
		WindowRTP:   s.WindowRTP,
		WindowSize:  s.WindowSize,
		Slices:      slices,
	}
}

func ToHistoryResponse(spins []model.SpinResult) dto.HistoryResponse {
	out := dto.HistoryResponse{Spins: make([]dto.SpinResponse, len(spins))}
	for i, s := range spins {
		out.Spins[i] = dto.SpinResponse{
			SliceIndex: s.SliceIndex,
			Credit:     s.Credit,
			Bet:        s.Bet,
			Demo:       s.Demo,
			LandedAt:   s.LandedAt,
		}
	}
	return out
}

// Negative indexes mean no slice
func sliceRef(i int) *int {
	if i < 0 {
		return nil
	}
	return &i
}

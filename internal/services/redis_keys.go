package services

const (
	KeyPlaySeq   = "%s:play_seq"
	KeyGamePlay  = "%s:play:%s"
	KeyPlayIndex = "%s:plays"
	KeyPlayStats = "%s:stats"

	statsFieldPlays    = "plays"
	statsFieldPayouts  = "payouts"
	statsFieldJackpots = "jackpots"
)

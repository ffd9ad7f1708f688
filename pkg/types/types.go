// Package types provides shared type definitions for the journal backend.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoodLabel represents a reported emotional state label
type MoodLabel string

const (
	MoodExcited      MoodLabel = "excited"
	MoodConfident    MoodLabel = "confident"
	MoodCalm         MoodLabel = "calm"
	MoodNeutral      MoodLabel = "neutral"
	MoodNervous      MoodLabel = "nervous"
	MoodFrustrated   MoodLabel = "frustrated"
	MoodSatisfied    MoodLabel = "satisfied"
	MoodDisappointed MoodLabel = "disappointed"
)

// TrendDirection classifies the direction of a metric over time
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// InsightType categorizes a personalized insight
type InsightType string

const (
	InsightConsistency InsightType = "consistency"
	InsightEmotional   InsightType = "emotional"
	InsightProcess     InsightType = "process"
	InsightPerformance InsightType = "performance"
)

// InsightPriority represents insight urgency
type InsightPriority string

const (
	PriorityHigh   InsightPriority = "high"
	PriorityMedium InsightPriority = "medium"
	PriorityLow    InsightPriority = "low"
)

// Weight returns the sort weight of a priority
func (p InsightPriority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// PatternType categorizes a mined performance pattern
type PatternType string

const (
	PatternTimeOfDay  PatternType = "timeOfDay"
	PatternDayOfWeek  PatternType = "dayOfWeek"
	PatternTimeframe  PatternType = "timeframe"
	PatternAssetClass PatternType = "assetClass"
)

// Timeframe represents trading timeframes
type Timeframe string

const (
	Timeframe1m  Timeframe = "1m"
	Timeframe5m  Timeframe = "5m"
	Timeframe15m Timeframe = "15m"
	Timeframe1h  Timeframe = "1h"
	Timeframe4h  Timeframe = "4h"
	Timeframe1d  Timeframe = "1d"
)

// TradeSide represents buy or sell
type TradeSide string

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

// EmotionalState captures reported pre/post-market moods and sub-ratings
type EmotionalState struct {
	PreMarketMood  MoodLabel `json:"preMarketMood,omitempty"`
	PostMarketMood MoodLabel `json:"postMarketMood,omitempty"`
	Confidence     int       `json:"confidence,omitempty"` // 1-5
	Stress         int       `json:"stress,omitempty"`     // 1-5
	Focus          int       `json:"focus,omitempty"`      // 1-5
}

// ProcessMetrics holds the five 1-5 discipline sub-scores and the derived
// 0-100 composite process score
type ProcessMetrics struct {
	PlanAdherence     int     `json:"planAdherence"`
	RiskManagement    int     `json:"riskManagement"`
	EntryTiming       int     `json:"entryTiming"`
	ExitTiming        int     `json:"exitTiming"`
	OverallDiscipline int     `json:"overallDiscipline"`
	ProcessScore      float64 `json:"processScore"`
}

// JournalEntry is one trading day's journal record. One entry per user per
// calendar day; the analytics core treats it as read-only input.
type JournalEntry struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	Date           time.Time       `json:"date"`
	IsComplete     bool            `json:"isComplete"`
	EmotionalState *EmotionalState `json:"emotionalState,omitempty"`
	ProcessMetrics *ProcessMetrics `json:"processMetrics,omitempty"`
	DailyPnL       decimal.Decimal `json:"dailyPnl"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// StreakPeriod is one recorded run of consecutive journaling days
type StreakPeriod struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Length    int       `json:"length"`
}

// ConsistencyMetrics summarizes journaling consistency for a user
type ConsistencyMetrics struct {
	CurrentStreak      int            `json:"currentStreak"`
	LongestStreak      int            `json:"longestStreak"`
	TotalEntries       int            `json:"totalEntries"`
	CompletionRate     float64        `json:"completionRate"`     // %
	WeeklyConsistency  float64        `json:"weeklyConsistency"`  // %
	MonthlyConsistency float64        `json:"monthlyConsistency"` // %
	StreakHistory      []StreakPeriod `json:"streakHistory"`
}

// EmotionalPattern relates one observed mood label to process performance
type EmotionalPattern struct {
	Mood                MoodLabel       `json:"mood"`
	AverageProcessScore float64         `json:"averageProcessScore"`
	AveragePnL          decimal.Decimal `json:"averagePnl"`
	Frequency           int             `json:"frequency"`
	CorrelationStrength float64         `json:"correlationStrength"` // [0,1]
	Trend               TrendDirection  `json:"trend"`
	Recommendations     []string        `json:"recommendations"`
}

// ProcessTrend tracks one process metric's recent movement
type ProcessTrend struct {
	Metric           string         `json:"metric"`
	CurrentValue     float64        `json:"currentValue"`
	PreviousValue    float64        `json:"previousValue"`
	Trend            TrendDirection `json:"trend"`
	ChangePercentage float64        `json:"changePercentage"`
	WeeklyAverage    float64        `json:"weeklyAverage"`
	MonthlyAverage   float64        `json:"monthlyAverage"`
}

// PersonalizedInsight is one ranked, ephemeral insight surfaced to the user
type PersonalizedInsight struct {
	ID             string          `json:"id"`
	Type           InsightType     `json:"type"`
	Priority       InsightPriority `json:"priority"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Recommendation string          `json:"recommendation"`
	DataPoints     []float64       `json:"dataPoints"`
	Confidence     float64         `json:"confidence"` // [0,1]
	CreatedAt      time.Time       `json:"createdAt"`
}

// AnalyticsData bundles the full analytics result for one user and range
type AnalyticsData struct {
	UserID            string                `json:"userId"`
	StartDate         time.Time             `json:"startDate"`
	EndDate           time.Time             `json:"endDate"`
	Consistency       *ConsistencyMetrics   `json:"consistency"`
	EmotionalPatterns []EmotionalPattern    `json:"emotionalPatterns"`
	ProcessTrends     []ProcessTrend        `json:"processTrends"`
	Insights          []PersonalizedInsight `json:"insights"`
	GeneratedAt       time.Time             `json:"generatedAt"`
}

// Trade represents an executed trade belonging to a strategy
type Trade struct {
	ID              string          `json:"id"`
	StrategyID      string          `json:"strategyId"`
	Symbol          string          `json:"symbol"`
	Side            TradeSide       `json:"side"`
	Quantity        decimal.Decimal `json:"quantity"`
	EntryPrice      decimal.Decimal `json:"entryPrice"`
	ExitPrice       decimal.Decimal `json:"exitPrice"`
	PnL             decimal.Decimal `json:"pnl"`
	EntryTime       time.Time       `json:"entryTime"`
	ExitTime        time.Time       `json:"exitTime"`
	Session         string          `json:"session,omitempty"`
	Timeframe       Timeframe       `json:"timeframe,omitempty"`
	MarketCondition string          `json:"marketCondition,omitempty"`
}

// MonthlyReturn is one month of aggregate strategy P&L
type MonthlyReturn struct {
	Month string          `json:"month"` // YYYY-MM
	PnL   decimal.Decimal `json:"pnl"`
}

// StrategyPerformance holds aggregate statistics for one strategy
type StrategyPerformance struct {
	TotalTrades      int             `json:"totalTrades"`
	WinningTrades    int             `json:"winningTrades"`
	LosingTrades     int             `json:"losingTrades"`
	WinRate          float64         `json:"winRate"`      // %
	ProfitFactor     float64         `json:"profitFactor"` // gross profit / gross loss
	Expectancy       decimal.Decimal `json:"expectancy"`   // avg P&L per trade
	MaxDrawdown      float64         `json:"maxDrawdown"`  // % peak-to-trough
	RiskRewardRatio  float64         `json:"riskRewardRatio"`
	AvgWin           decimal.Decimal `json:"avgWin"`
	AvgLoss          decimal.Decimal `json:"avgLoss"`
	LargestWin       decimal.Decimal `json:"largestWin"`
	LargestLoss      decimal.Decimal `json:"largestLoss"`
	PerformanceTrend TrendDirection  `json:"performanceTrend"`
	MonthlyReturns   []MonthlyReturn `json:"monthlyReturns"`
}

// ProfessionalStrategy describes a trading strategy the user runs
type ProfessionalStrategy struct {
	ID               string               `json:"id"`
	Name             string               `json:"name"`
	Description      string               `json:"description,omitempty"`
	PrimaryTimeframe Timeframe            `json:"primaryTimeframe"`
	AssetClasses     []string             `json:"assetClasses"`
	RiskPerTrade     float64              `json:"riskPerTrade"` // % of equity
	Performance      *StrategyPerformance `json:"performance,omitempty"`
}

// PatternSample summarizes the trades backing a mined pattern
type PatternSample struct {
	Bucket     string          `json:"bucket"`
	SampleSize int             `json:"sampleSize"`
	WinRate    float64         `json:"winRate"` // %
	AvgPnL     decimal.Decimal `json:"avgPnl"`
}

// PerformancePattern is one mined cross-strategy performance pattern
type PerformancePattern struct {
	Type           PatternType   `json:"type"`
	Pattern        string        `json:"pattern"`
	Confidence     float64       `json:"confidence"` // 0-100
	Impact         float64       `json:"impact"`     // percentage points vs 50% baseline
	SupportingData PatternSample `json:"supportingData"`
}

// OptimizationSuggestion is one concrete strategy optimization
type OptimizationSuggestion struct {
	Category                 string   `json:"category"`
	Suggestion               string   `json:"suggestion"`
	ExpectedImprovement      float64  `json:"expectedImprovement"` // %
	Confidence               float64  `json:"confidence"`          // 0-100
	ImplementationDifficulty string   `json:"implementationDifficulty"`
	RequiredData             []string `json:"requiredData"`
}

// MarketConditionPoint is one day of externally supplied market-condition data
type MarketConditionPoint struct {
	Date      time.Time `json:"date"`
	Condition string    `json:"condition"`
	Intensity float64   `json:"intensity"` // condition strength for the day
}

// MarketCorrelation relates a market condition to strategy performance
type MarketCorrelation struct {
	Condition       string   `json:"condition"`
	Correlation     float64  `json:"correlation"`  // [-1,1]
	Significance    float64  `json:"significance"` // [0,1]
	Description     string   `json:"description"`
	Recommendations []string `json:"recommendations"`
}

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从文件加载配置并填充到 Cfg
func LoadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.SetEnvPrefix("TRENDSPOTTER")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	Cfg = &cfg

	return nil
}

// setDefaults 配置缺省值，配置文件缺失时服务仍可按默认规则运行
func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.max_idle", 10)
	viper.SetDefault("database.max_open", 50)
	viper.SetDefault("database.max_lifetime", 30)
	viper.SetDefault("redis.pool_size", 20)
	viper.SetDefault("mongo.max_pool_size", 50)
	viper.SetDefault("mongo.timeout", 10)
	viper.SetDefault("jwt.issuer", "Trendspotter")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.slow_threshold", 200)
	viper.SetDefault("logstash.index", "logstash-trendspotter")
	viper.SetDefault("kafka.consumer.session_timeout", 30)
	viper.SetDefault("kafka.consumer.heartbeat_interval", 3)
	viper.SetDefault("kafka.consumer.rebalance_timeout", 60)
	viper.SetDefault("kafka.consumer.max_processing_time", 10)

	d := DefaultReputation()
	viper.SetDefault("reputation.timezone", d.Timezone)
	viper.SetDefault("reputation.max_skips", d.MaxSkips)
	viper.SetDefault("reputation.skip_ttl", d.SkipTTL)
	viper.SetDefault("reputation.summary_ttl", d.SummaryTTL)
	viper.SetDefault("reputation.cas_retries", d.CASRetries)
	viper.SetDefault("reputation.leaderboard_size", d.LeaderboardN)
	viper.SetDefault("reputation.cron.reconcile", d.Cron.Reconcile)
	viper.SetDefault("reputation.cron.contested", d.Cron.Contested)

	viper.SetDefault("reputation.queue.candidate_limit", d.Queue.CandidateLimit)
	viper.SetDefault("reputation.queue.graduation_votes", d.Queue.GraduationVotes)
	viper.SetDefault("reputation.queue.age_weight_per_hour", d.Queue.AgeWeightPerHour)
	viper.SetDefault("reputation.queue.age_cap", d.Queue.AgeCap)
	viper.SetDefault("reputation.queue.new_spotter_threshold", d.Queue.NewSpotterThreshold)
	viper.SetDefault("reputation.queue.new_spotter_bonus", d.Queue.NewSpotterBonus)
	viper.SetDefault("reputation.queue.spotter_bonus", d.Queue.SpotterBonus)
	viper.SetDefault("reputation.queue.rotation_bonus", d.Queue.RotationBonus)
	viper.SetDefault("reputation.queue.rotation_modulo", d.Queue.RotationModulo)
	viper.SetDefault("reputation.queue.under_validated_unit", d.Queue.UnderValidatedUnit)

	viper.SetDefault("reputation.consensus.min_votes", d.Consensus.MinVotes)
	viper.SetDefault("reputation.consensus.approve_rate", d.Consensus.ApproveRate)
	viper.SetDefault("reputation.consensus.reject_rate", d.Consensus.RejectRate)
	viper.SetDefault("reputation.consensus.accuracy_floor", d.Consensus.AccuracyFloor)
}

// DefaultReputation 声望引擎默认参数
func DefaultReputation() ReputationConfig {
	return ReputationConfig{
		Timezone:     "UTC",
		MaxSkips:     3,
		SkipTTL:      6 * 60 * 60,
		SummaryTTL:   60,
		CASRetries:   5,
		LeaderboardN: 100,
		Cron: ReputationCronCfg{
			Reconcile: "0 */10 * * * *",
			Contested: "0 0 * * * *",
		},
		Queue: QueueConfig{
			CandidateLimit:      10,
			GraduationVotes:     10,
			AgeWeightPerHour:    2,
			AgeCap:              100,
			NewSpotterThreshold: 5,
			NewSpotterBonus:     20,
			SpotterBonus:        10,
			RotationBonus:       30,
			RotationModulo:      5,
			UnderValidatedUnit:  5,
		},
		Consensus: ConsensusConfig{
			MinVotes:      10,
			ApproveRate:   0.7,
			RejectRate:    0.3,
			AccuracyFloor: 10,
		},
	}
}

// Location 返回用于计算自然日（连续签到）的时区
func (c ReputationConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

package config

// Config 配置主体
type Config struct {
	Server             ServerConfig       `mapstructure:"server"`
	DB                 DBConfig           `mapstructure:"database"`
	Redis              RedisConfig        `mapstructure:"redis"`
	Mongo              MongoConfig        `mapstructure:"mongo"`
	Log                LogConfig          `mapstructure:"log"`
	Logstash           LogstashConfig     `mapstructure:"logstash"`
	Kafka              KafkaConfig        `mapstructure:"kafka"`
	KafkaTrendConsumer KafkaTrendConsumer `mapstructure:"kafka_trend_consumer"`
	JWT                JWTConfig          `mapstructure:"jwt"`
	Reputation         ReputationConfig   `mapstructure:"reputation"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port         int      `mapstructure:"port"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// MongoConfig 系统通知库，Timeout 单位秒
type MongoConfig struct {
	URL         string `mapstructure:"url"`
	Database    string `mapstructure:"database"`
	MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	Timeout     int    `mapstructure:"timeout"`
}

// LogConfig 日志级别与慢操作阈值（毫秒），SQL、Redis、Mongo 共用
type LogConfig struct {
	Level         string `mapstructure:"level"`
	SlowThreshold int    `mapstructure:"slow_threshold"`
}

type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

type KafkaConfig struct {
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	OffsetOldest      bool `mapstructure:"offset_oldest"`
	SessionTimeout    int  `mapstructure:"session_timeout"`
	HeartbeatInterval int  `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int  `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int  `mapstructure:"max_processing_time"`
}

type KafkaTrendConsumer struct {
	Enable  bool   `mapstructure:"enable"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// ReputationConfig 验证队列、共识与积分相关的可调参数
type ReputationConfig struct {
	Timezone     string            `mapstructure:"timezone"`
	Points       map[string]int    `mapstructure:"points"`
	Queue        QueueConfig       `mapstructure:"queue"`
	Consensus    ConsensusConfig   `mapstructure:"consensus"`
	MaxSkips     int               `mapstructure:"max_skips"`
	SkipTTL      int               `mapstructure:"skip_ttl"`
	SummaryTTL   int               `mapstructure:"summary_ttl"`
	CASRetries   int               `mapstructure:"cas_retries"`
	Cron         ReputationCronCfg `mapstructure:"cron"`
	LeaderboardN int64             `mapstructure:"leaderboard_size"`
}

// QueueConfig 验证队列打分参数
type QueueConfig struct {
	CandidateLimit      int `mapstructure:"candidate_limit"`
	GraduationVotes     int `mapstructure:"graduation_votes"`
	AgeWeightPerHour    int `mapstructure:"age_weight_per_hour"`
	AgeCap              int `mapstructure:"age_cap"`
	NewSpotterThreshold int `mapstructure:"new_spotter_threshold"`
	NewSpotterBonus     int `mapstructure:"new_spotter_bonus"`
	SpotterBonus        int `mapstructure:"spotter_bonus"`
	RotationBonus       int `mapstructure:"rotation_bonus"`
	RotationModulo      int `mapstructure:"rotation_modulo"`
	UnderValidatedUnit  int `mapstructure:"under_validated_unit"`
}

// ConsensusConfig 共识判定参数
type ConsensusConfig struct {
	MinVotes      int     `mapstructure:"min_votes"`
	ApproveRate   float64 `mapstructure:"approve_rate"`
	RejectRate    float64 `mapstructure:"reject_rate"`
	AccuracyFloor int     `mapstructure:"accuracy_floor"`
}

type ReputationCronCfg struct {
	Reconcile string `mapstructure:"reconcile"`
	Contested string `mapstructure:"contested"`
}

// Package analyst 实现周期性的金融市场分析
// 每个周期抓取财经新闻，交给模型生成结构化分析并落盘，
// 同时用 PDCA 循环把过去预测的复盘结果积累成学习笔记，
// 反哺后续的分析提示词
package analyst

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Prediction 对单个标的的预测
type Prediction struct {
	Target     string  `json:"target"`     // 预测标的（日経平均、USD/JPY 等）
	Direction  string  `json:"direction"`  // 预测方向
	Confidence float64 `json:"confidence"` // 置信度，取值 0〜1
	Reasoning  string  `json:"reasoning"`  // 预测理由
}

// Record 一次分析周期的完整结果
type Record struct {
	Timestamp       string       `json:"timestamp"`
	SpeechSummary   string       `json:"speech_summary"`
	MarketSentiment string       `json:"market_sentiment"` // bullish / bearish / neutral
	KeySectors      []string     `json:"key_sectors,omitempty"`
	Predictions     []Prediction `json:"predictions"`
	RiskFactors     []string     `json:"risk_factors"`
	ActionAdvice    string       `json:"action_advice,omitempty"`
	NewsCount       int          `json:"news_count"`

	// Error 分析失败时记录失败原因，正常记录中该字段为空
	Error string `json:"error,omitempty"`
}

// LearningNote PDCA 复盘生成的一条学习笔记
type LearningNote struct {
	EvaluationDate string   `json:"evaluation_date"`
	AccuracyNotes  string   `json:"accuracy_notes"`
	LessonsLearned []string `json:"lessons_learned"`
	BiasWarnings   []string `json:"bias_warnings"`
}

// maxNotes 学习笔记的容量上限，超出后淘汰最旧的
const maxNotes = 20

// Store 分析记录和学习笔记的文件存储
// 分析记录按「年-月-日_时-分.json」一条一文件存放；
// 学习笔记整体保存在单个 JSON 数组文件里，重写操作由互斥锁串行化
type Store struct {
	analysesDir string
	notesPath   string

	// mu 保护学习笔记的读-改-写序列
	mu sync.Mutex
}

// NewStore 在指定数据目录下创建存储
func NewStore(dataDir string) (*Store, error) {
	analysesDir := filepath.Join(dataDir, "analyses")
	if err := os.MkdirAll(analysesDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create analyses dir: %w", err)
	}
	return &Store{
		analysesDir: analysesDir,
		notesPath:   filepath.Join(dataDir, "learning_notes.json"),
	}, nil
}

// SaveRecord 将分析记录写入以时间戳命名的文件
// 同一分钟内的记录会覆盖同名文件；写入失败时重试一次
func (s *Store) SaveRecord(ts time.Time, rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	path := filepath.Join(s.analysesDir, ts.Format("2006-01-02_15-04")+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("Store: write failed, retrying once: %v", err)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	log.Printf("Store: saved analysis to %s", path)
	return nil
}

// Latest 返回最新的一条分析记录，没有任何记录时返回 (nil, nil)
func (s *Store) Latest() (*Record, error) {
	records, err := s.History(1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// History 返回最近 n 条分析记录，按时间从新到旧排列
// 单个文件损坏时跳过该文件，不影响其余记录
func (s *Store) History(n int) ([]*Record, error) {
	entries, err := os.ReadDir(s.analysesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read analyses dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, entry.Name())
		}
	}
	// 文件名即时间戳，字典序倒排等于时间倒排
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	if n > 0 && len(names) > n {
		names = names[:n]
	}

	records := make([]*Record, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.analysesDir, name))
		if err != nil {
			log.Printf("Store: skipping unreadable record %s: %v", name, err)
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			log.Printf("Store: skipping corrupt record %s: %v", name, err)
			continue
		}
		records = append(records, &rec)
	}
	return records, nil
}

// AppendNote 追加一条学习笔记，超出容量时淘汰最旧的
// 整个读-改-写序列持锁执行，并发追加不会相互覆盖
func (s *Store) AppendNote(note LearningNote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.loadNotes()
	if err != nil && !os.IsNotExist(err) {
		// 笔记文件损坏时放弃旧内容重新开始，不让一次损坏永久卡死 PDCA
		log.Printf("Store: learning notes unreadable, starting fresh: %v", err)
		notes = nil
	}

	notes = append(notes, note)
	if len(notes) > maxNotes {
		notes = notes[len(notes)-maxNotes:]
	}

	data, err := json.MarshalIndent(notes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal learning notes: %w", err)
	}
	if err := os.WriteFile(s.notesPath, data, 0o644); err != nil {
		log.Printf("Store: write failed, retrying once: %v", err)
		if err := os.WriteFile(s.notesPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write learning notes: %w", err)
		}
	}
	return nil
}

// RecentNotes 返回最近 n 条学习笔记，按时间从旧到新排列
// 笔记文件不存在时返回包装 os.ErrNotExist 的错误
func (s *Store) RecentNotes(n int) ([]LearningNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.loadNotes()
	if err != nil {
		return nil, err
	}
	if n > 0 && len(notes) > n {
		notes = notes[len(notes)-n:]
	}
	return notes, nil
}

func (s *Store) loadNotes() ([]LearningNote, error) {
	data, err := os.ReadFile(s.notesPath)
	if err != nil {
		return nil, err
	}
	var notes []LearningNote
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("failed to parse learning notes: %w", err)
	}
	return notes, nil
}

package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQLドライバー
	"github.com/kestrel-tetris/kestrel-backend/internal/models"
)

// DailyContribution represents a single day's contribution data.
// type DailyContribution struct {
// 	Date            string
// 	ContributionCount int
// }

// DatabaseService provides methods for interacting with the database.
type DatabaseService struct {
	DB *sql.DB
}

// NewDatabaseService creates a new instance of DatabaseService and establishes a database connection.
func NewDatabaseService(databaseURL string) (*DatabaseService, error) {
	log.Printf("データベース接続を試行中: URLの最初の50文字: %s...", databaseURL[:min(len(databaseURL), 50)]) // URLの冒頭をログ出力
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		log.Printf("DatabaseService Error: sql.Openに失敗しました: %v", err)
		return nil, fmt.Errorf("データベースへの接続オブジェクト作成に失敗しました: %w", err)
	}

	// データベース接続の確認 (Ping)
	err = db.Ping()
	if err != nil {
		log.Printf("DatabaseService Error: db.Pingに失敗しました: %v", err)
		log.Printf("DatabaseService Error: データベース接続エラーの詳細: %s", err.Error())
		return nil, fmt.Errorf("データベースのPingに失敗しました。接続情報やネットワークを確認してください: %w", err)
	}

	log.Println("データベースに正常に接続しました。")
	return &DatabaseService{DB: db}, nil
}

// GetGitHubUsernameByUserID fetches the GitHub username for a given user ID (UUID).
func (s *DatabaseService) GetGitHubUsernameByUserID(userID string) (string, error) {
	var githubUsername string
	// users テーブルから userID に紐づく user_name を取得するクエリ
	query := `SELECT user_name FROM users WHERE id = $1`
	err := s.DB.QueryRow(query, userID).Scan(&githubUsername)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("ユーザーID %s に紐づくGitHubユーザー名が見つかりません。", userID)
		}
		return "", fmt.Errorf("GitHubユーザー名の取得に失敗しました: %w", err)
	}
	log.Printf("DatabaseService Info: ユーザーID %s に対応するGitHubユーザー名 '%s' を取得しました。", userID, githubUsername)
	return githubUsername, nil
}

// GetContributionsByUserID retrieves all contributions for a specific user from the database.
func (s *DatabaseService) GetContributionsByUserID(userID string) ([]models.DailyContribution, error) {
	log.Printf("DatabaseService Info: ユーザーID %s の保存済み貢献データを取得中...", userID)
	var contributions []models.DailyContribution
	query := `SELECT date, contribution_count FROM contribution_data WHERE user_id = $1 ORDER BY date ASC`

	log.Printf("DatabaseService Debug: クエリを実行します: %s", query)
	rows, err := s.DB.Query(query, userID)
	if err != nil {
		log.Printf("DatabaseService Error: クエリ実行エラー: %v", err)
		return nil, fmt.Errorf("保存済み貢献データの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	log.Printf("DatabaseService Debug: クエリ実行成功、結果をスキャンします")
	for rows.Next() {
		var date time.Time
		var count int
		if err := rows.Scan(&date, &count); err != nil {
			log.Printf("DatabaseService Error: 行のスキャンエラー: %v", err)
			return nil, fmt.Errorf("保存済み貢献データのスキャンに失敗しました: %w", err)
		}
		contributions = append(contributions, models.DailyContribution{
			Date:  date.Format("2006-01-02"),
			Count: count,
		})
	}

	if err := rows.Err(); err != nil {
		log.Printf("DatabaseService Error: 行のイテレーションエラー: %v", err)
		return nil, fmt.Errorf("保存済み貢献データのイテレーション中にエラーが発生しました: %w", err)
	}

	log.Printf("DatabaseService Info: ユーザーID %s の保存済み貢献データ %d 件を取得しました", userID, len(contributions))
	return contributions, nil
}

// SaveContributions saves a slice of daily contributions for a given user.
// It first deletes existing contributions for the user and then inserts the new ones.
func (s *DatabaseService) SaveContributions(userID string, contributions []models.DailyContribution) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	// 既存のデータを削除
	_, err = tx.Exec("DELETE FROM contribution_data WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("既存の貢献データの削除に失敗しました: %w", err)
	}

	// 新しいデータを挿入
	stmt, err := tx.Prepare(`
		INSERT INTO contribution_data (user_id, date, contribution_count)
		VALUES ($1, $2, $3)
	`)
	if err != nil {
		return fmt.Errorf("INSERT文の準備に失敗しました: %w", err)
	}
	defer stmt.Close()

	for _, c := range contributions {
		date, err := time.Parse("2006-01-02", c.Date)
		if err != nil {
			return fmt.Errorf("日付のパースに失敗しました: %w", err)
		}
		_, err = stmt.Exec(userID, date, c.Count)
		if err != nil {
			return fmt.Errorf("貢献データの挿入に失敗しました: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}

	return nil
}

// min helper function for logging
func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// GetDeckByID は指定されたIDのデッキをデータベースから取得します。
//
// Parameters:
//   deckID : 取得するデッキのUUID
// Returns:
//   *models.Deck: 取得したデッキのポインタ
//   error : エラーが発生した場合
func (s *DatabaseService) GetDeckByID(deckID string) (*models.Deck, error) {
	log.Printf("DatabaseService Info: デッキID %s のデッキデータを取得中...", deckID)

	var deck models.Deck
	query := `SELECT id, user_id, total_score, created_at, updated_at FROM decks WHERE id = $1`

	err := s.DB.QueryRow(query, deckID).Scan(
		&deck.ID,
		&deck.UserID,
		&deck.TotalScore,
		&deck.CreatedAt,
		&deck.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		log.Printf("DatabaseService Error: デッキ取得エラー: %v", err)
		return nil, fmt.Errorf("デッキの取得に失敗しました: %w", err)
	}

	log.Printf("DatabaseService Info: デッキID %s のデッキデータを正常に取得しました", deckID)
	return &deck, nil
}

// GetUserDisplayNameByUserID fetches the display name (user_name) for a given user ID (UUID).
// If the user doesn't exist or user_name is empty, returns "ゲスト".
func (s *DatabaseService) GetUserDisplayNameByUserID(userID string) string {
	var userName sql.NullString
	// users テーブルから userID に紐づく user_name を取得するクエリ
	query := `SELECT user_name FROM users WHERE id = $1`
	err := s.DB.QueryRow(query, userID).Scan(&userName)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Printf("DatabaseService Info: ユーザーID %s が見つからないため、「ゲスト」を返します", userID)
			return "ゲスト"
		}
		log.Printf("DatabaseService Error: ユーザー名の取得に失敗しました: %v, 「ゲスト」を返します", err)
		return "ゲスト"
	}
	
	// user_nameがNULLまたは空文字列の場合も「ゲスト」を返す
	if !userName.Valid || userName.String == "" {
		log.Printf("DatabaseService Info: ユーザーID %s のuser_nameが空のため、「ゲスト」を返します", userID)
		return "ゲスト"
	}
	
	log.Printf("DatabaseService Info: ユーザーID %s に対応するユーザー名 '%s' を取得しました", userID, userName.String)
	return userName.String
}



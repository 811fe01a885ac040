package apperr

import (
	"fmt"
	"sync"
)

// MessageKey identifies a user-facing message in the catalog.
type MessageKey string

const (
	MsgDatabase          MessageKey = "database"
	MsgIo                MessageKey = "io"
	MsgNotFound          MessageKey = "not_found"
	MsgIDGeneration      MessageKey = "id_generation"
	MsgTimeUtils         MessageKey = "time_utils"
	MsgUnexpected        MessageKey = "unexpected"
	MsgInvalidInput      MessageKey = "invalid_input"
	MsgInvalidDate       MessageKey = "invalid_date"
	MsgFutureDate        MessageKey = "future_date"
	MsgDuplicateCheckin  MessageKey = "duplicate_checkin"
	MsgMoodLevelRange    MessageKey = "mood_level_range"
	MsgMoodTextTooLong   MessageKey = "mood_text_too_long"
	MsgTooManyTags       MessageKey = "too_many_tags"
	MsgTagTooLong        MessageKey = "tag_too_long"
	MsgTooManyTodos      MessageKey = "too_many_todos"
	MsgTodoTooLong       MessageKey = "todo_too_long"
	MsgTaskDescRequired  MessageKey = "task_description_required"
	MsgTaskDescTooLong   MessageKey = "task_description_too_long"
	MsgTaskMemoTooLong   MessageKey = "task_memo_too_long"
	MsgInvalidCompletion MessageKey = "invalid_completed_at"
	MsgInvalidID         MessageKey = "invalid_id"
)

const (
	LocaleEnglish  = "en"
	LocaleJapanese = "ja"
)

var catalog = map[string]map[MessageKey]string{
	LocaleEnglish: {
		MsgDatabase:          "A database error occurred.",
		MsgIo:                "A file access error occurred.",
		MsgNotFound:          "The requested %s could not be found.",
		MsgIDGeneration:      "Failed to generate an ID.",
		MsgTimeUtils:         "Failed to parse the date or time. Please check the format.",
		MsgUnexpected:        "An unexpected error occurred. Please try again later.",
		MsgInvalidInput:      "The input is invalid.",
		MsgInvalidDate:       "The date must be in YYYY-MM-DD format.",
		MsgFutureDate:        "Future dates cannot be recorded.",
		MsgDuplicateCheckin:  "A check-in has already been recorded for this date.",
		MsgMoodLevelRange:    "Please choose a mood level between 1 and 5.",
		MsgMoodTextTooLong:   "The mood note must be 500 characters or less.",
		MsgTooManyTags:       "Up to 10 physical state tags can be selected.",
		MsgTagTooLong:        "Each tag must be 20 characters or less.",
		MsgTooManyTodos:      "Up to 3 to-dos can be entered.",
		MsgTodoTooLong:       "Each to-do must be 100 characters or less.",
		MsgTaskDescRequired:  "Please enter a task description.",
		MsgTaskDescTooLong:   "The task description must be 200 characters or less.",
		MsgTaskMemoTooLong:   "The task memo must be 1000 characters or less.",
		MsgInvalidCompletion: "The completion time is invalid for this task.",
		MsgInvalidID:         "The ID is invalid.",
	},
	LocaleJapanese: {
		MsgDatabase:          "データベース処理中にエラーが発生しました。",
		MsgIo:                "ファイルの読み書き中にエラーが発生しました。",
		MsgNotFound:          "指定された%sが見つかりませんでした。",
		MsgIDGeneration:      "IDの生成に失敗しました。",
		MsgTimeUtils:         "日時の解析に失敗しました。入力形式を確認してください。",
		MsgUnexpected:        "予期せぬエラーが発生しました。しばらくしてから再度お試しください。",
		MsgInvalidInput:      "入力内容が正しくありません。",
		MsgInvalidDate:       "日付はYYYY-MM-DD形式で入力してください。",
		MsgFutureDate:        "未来の日付は記録できません。",
		MsgDuplicateCheckin:  "この日のチェックインは既に記録済みです。",
		MsgMoodLevelRange:    "気分レベルは1から5の間で選択してください。",
		MsgMoodTextTooLong:   "気分メモは500文字以内で入力してください。",
		MsgTooManyTags:       "体の状態タグは最大10個まで選択可能です。",
		MsgTagTooLong:        "各タグは20文字以内で入力してください。",
		MsgTooManyTodos:      "「やらなきゃ」は最大3つまで入力可能です。",
		MsgTodoTooLong:       "各項目は100文字以内で入力してください。",
		MsgTaskDescRequired:  "タスクの内容を入力してください。",
		MsgTaskDescTooLong:   "タスクの内容は200文字以内で入力してください。",
		MsgTaskMemoTooLong:   "タスクのメモは1000文字以内で入力してください。",
		MsgInvalidCompletion: "完了日時が正しくありません。",
		MsgInvalidID:         "IDが正しくありません。",
	},
}

var (
	localeMu sync.RWMutex
	locale   = LocaleEnglish
)

// SetLocale selects the catalog used for user-facing messages.
// Unknown locales are rejected and leave the current locale unchanged.
func SetLocale(l string) error {
	if _, ok := catalog[l]; !ok {
		return fmt.Errorf("unsupported locale %q", l)
	}
	localeMu.Lock()
	locale = l
	localeMu.Unlock()
	return nil
}

// Locale returns the active locale.
func Locale() string {
	localeMu.RLock()
	defer localeMu.RUnlock()
	return locale
}

// Message returns the localized message for key, falling back to English.
func Message(key MessageKey, args ...interface{}) string {
	msgs := catalog[Locale()]
	msg, ok := msgs[key]
	if !ok {
		msg, ok = catalog[LocaleEnglish][key]
		if !ok {
			msg = catalog[LocaleEnglish][MsgUnexpected]
		}
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

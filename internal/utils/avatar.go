package utils

import (
	"math/rand"
)

// GetRandomEmoji 返回一个随机 emoji 用于默认头像
func GetRandomEmoji() string {
	emojis := []string{"🌱", "🌿", "🍃", "🦉", "🐼", "🦊", "🐨", "🐸", "🧐", "🤓", "👨‍💻", "👩‍💻"}
	return emojis[rand.Intn(len(emojis))]
}

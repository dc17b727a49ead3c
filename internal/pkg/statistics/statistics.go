package statistics

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/tradewindhq/tradewind/app/models"
	"github.com/tradewindhq/tradewind/internal/pkg/cache"
	"github.com/tradewindhq/tradewind/internal/pkg/database"
)

const (
	CacheKeyAlertsTotal = "statistics:alerts:total"
	CacheKeyAlertsDaily = "statistics:alerts:daily:%s" // Format with date YYYY-MM-DD
	CacheKeyAlertsHit   = "statistics:alerts:hit"
	CacheKeyUsers       = "statistics:users:total"
	CacheExpiration     = 30 * time.Minute
)

// StatisticsData holds the aggregate numbers shown on the landing page
type StatisticsData struct {
	TodayAlerts int
	TotalUsers  int
	TotalAlerts int
	HitRate     float64
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// ShouldUpdateCache checks whether the cached statistics are stale
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	return time.Since(lastCacheUpdate) > cacheUpdateInterval
}

// UpdateCacheIfNeeded refreshes the statistics cache when stale
func UpdateCacheIfNeeded() {
	if ShouldUpdateCache() {
		cacheUpdateMutex.Lock()
		defer cacheUpdateMutex.Unlock()

		if err := UpdateStatisticsCache(); err != nil {
			log.Printf("Error updating statistics cache: %v", err)
		} else {
			lastCacheUpdate = time.Now()
		}
	}
}

// ResetCacheUpdateTimer forces a refresh on the next read
func ResetCacheUpdateTimer() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	lastCacheUpdate = time.Time{}
}

// UpdateStatisticsCache recomputes all statistics and stores them in the cache
func UpdateStatisticsCache() error {
	db := database.GetDB()

	var totalAlerts int64
	if err := db.Model(&models.Alert{}).Where("published = ?", true).Count(&totalAlerts).Error; err != nil {
		log.Printf("Error counting total alerts: %v", err)
		return err
	}

	var todayAlerts int64
	today := time.Now().Format("2006-01-02")
	todayStart, _ := time.Parse("2006-01-02", today)
	todayEnd := todayStart.Add(24 * time.Hour)

	if err := db.Model(&models.Alert{}).Where("published = ? AND created_at BETWEEN ? AND ?", true, todayStart, todayEnd).Count(&todayAlerts).Error; err != nil {
		log.Printf("Error counting today's alerts: %v", err)
		return err
	}

	// Hit rate over closed alerts only (hit or stopped)
	var hitAlerts, closedAlerts int64
	if err := db.Model(&models.Alert{}).Where("status = ?", models.AlertStatusHit).Count(&hitAlerts).Error; err != nil {
		log.Printf("Error counting hit alerts: %v", err)
		return err
	}
	if err := db.Model(&models.Alert{}).Where("status IN ?", []string{models.AlertStatusHit, models.AlertStatusStopped}).Count(&closedAlerts).Error; err != nil {
		log.Printf("Error counting closed alerts: %v", err)
		return err
	}
	hitRate := 0.0
	if closedAlerts > 0 {
		hitRate = float64(hitAlerts) / float64(closedAlerts) * 100
	}

	var totalUsers int64
	if err := db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		log.Printf("Error counting total users: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyAlertsTotal, strconv.FormatInt(totalAlerts, 10), CacheExpiration); err != nil {
		log.Printf("Error caching total alerts: %v", err)
		return err
	}

	dailyKey := fmt.Sprintf(CacheKeyAlertsDaily, today)
	if err := cache.Set(dailyKey, strconv.FormatInt(todayAlerts, 10), CacheExpiration); err != nil {
		log.Printf("Error caching today's alerts: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyAlertsHit, strconv.FormatFloat(hitRate, 'f', 2, 64), CacheExpiration); err != nil {
		log.Printf("Error caching hit rate: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyUsers, strconv.FormatInt(totalUsers, 10), CacheExpiration); err != nil {
		log.Printf("Error caching total users: %v", err)
		return err
	}

	log.Printf("Statistics updated in cache: Total Alerts: %d, Today's Alerts: %d, Total Users: %d, Hit Rate: %.2f%%",
		totalAlerts, todayAlerts, totalUsers, hitRate)

	return nil
}

// GetTotalAlerts returns the number of published alerts from cache or database
func GetTotalAlerts() int {
	val, err := cache.Get(CacheKeyAlertsTotal)
	if err != nil {
		var count int64
		db := database.GetDB()
		if err := db.Model(&models.Alert{}).Where("published = ?", true).Count(&count).Error; err != nil {
			log.Printf("Error counting total alerts: %v", err)
			return 0
		}

		if err := cache.Set(CacheKeyAlertsTotal, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
			log.Printf("Error caching total alerts: %v", err)
		}

		return int(count)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}

	return int(count)
}

// GetTodayAlerts returns the number of alerts published today from cache or database
func GetTodayAlerts() int {
	today := time.Now().Format("2006-01-02")
	dailyKey := fmt.Sprintf(CacheKeyAlertsDaily, today)

	val, err := cache.Get(dailyKey)
	if err != nil {
		var count int64
		db := database.GetDB()
		todayStart, _ := time.Parse("2006-01-02", today)
		todayEnd := todayStart.Add(24 * time.Hour)

		if err := db.Model(&models.Alert{}).Where("published = ? AND created_at BETWEEN ? AND ?", true, todayStart, todayEnd).Count(&count).Error; err != nil {
			log.Printf("Error counting today's alerts: %v", err)
			return 0
		}

		if err := cache.Set(dailyKey, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
			log.Printf("Error caching today's alerts: %v", err)
		}

		return int(count)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}

	return int(count)
}

// GetHitRate returns the percentage of closed alerts that hit their target
func GetHitRate() float64 {
	val, err := cache.Get(CacheKeyAlertsHit)
	if err != nil {
		if err := UpdateStatisticsCache(); err != nil {
			return 0
		}
		val, err = cache.Get(CacheKeyAlertsHit)
		if err != nil {
			return 0
		}
	}

	rate, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0
	}

	return rate
}

// GetTotalUsers returns the total number of users from cache or database
func GetTotalUsers() int {
	val, err := cache.Get(CacheKeyUsers)
	if err != nil {
		var count int64
		db := database.GetDB()
		if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
			log.Printf("Error counting total users: %v", err)
			return 0
		}

		if err := cache.Set(CacheKeyUsers, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
			log.Printf("Error caching total users: %v", err)
		}

		return int(count)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}

	return int(count)
}

// GetStatisticsData returns all landing page statistics
func GetStatisticsData() StatisticsData {
	UpdateCacheIfNeeded()

	return StatisticsData{
		TodayAlerts: GetTodayAlerts(),
		TotalUsers:  GetTotalUsers(),
		TotalAlerts: GetTotalAlerts(),
		HitRate:     GetHitRate(),
	}
}

package handler

import (
	"strings"
	"sync"

	"viracoach/config"
	"viracoach/internal/dto"
	"viracoach/internal/queue"
	"viracoach/internal/service"
	"viracoach/internal/taskrunner"
	"viracoach/log"
)

var (
	dispatchOnce  sync.Once
	analysisQueue *queue.Queue
	analysisPool  *taskrunner.Runner
)

// dispatchAnalysis registers a task row and hands the job to Redis when a
// queue is configured, otherwise to the in-process worker pool. Both paths
// bound how many pipelines run at once.
func dispatchAnalysis(svc *service.Service, req dto.StartAnalysisReq) (string, error) {
	dispatchOnce.Do(func() {
		if redisAddr := strings.TrimSpace(config.Conf.Queue.RedisAddr); redisAddr != "" {
			analysisQueue = queue.NewQueue(queue.Config{
				RedisAddr:     redisAddr,
				RedisPassword: config.Conf.Queue.RedisPassword,
				RedisDB:       config.Conf.Queue.RedisDB,
				Concurrency:   config.Conf.Queue.Concurrency,
			})
			log.GetLogger().Info("dispatching analyses to redis queue")
			return
		}
		analysisPool = taskrunner.New(taskrunner.DefaultConfig())
		log.GetLogger().Info("dispatching analyses to in-process workers")
	})

	taskId, err := svc.RegisterAnalysisTask(req)
	if err != nil {
		return "", err
	}

	if analysisQueue != nil {
		err = analysisQueue.EnqueueAnalysisTask(queue.AnalysisPayload{
			TaskID:    taskId,
			URL:       req.Url,
			OpenaiKey: req.OpenaiKey,
			GeminiKey: req.GeminiKey,
		})
	} else {
		err = analysisPool.Submit(taskrunner.AnalysisTaskPayload{
			TaskID:    taskId,
			URL:       req.Url,
			OpenaiKey: req.OpenaiKey,
			GeminiKey: req.GeminiKey,
		})
	}
	if err != nil {
		return "", err
	}
	return taskId, nil
}

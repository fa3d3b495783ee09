package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"partsbot/pkg/response"
	"partsbot/pkg/scheduler"
)

// schedulerUnavailable writes a 503 when no scheduler is attached
func (h *HandlerService) schedulerUnavailable(c *gin.Context) bool {
	if h.IsSchedulerAvailable() {
		return false
	}
	response.Fail(c, http.StatusServiceUnavailable, "SCHEDULER_UNAVAILABLE", "Scheduler not available", nil)
	return true
}

// GetSchedulerStatus returns scheduler status
// @Summary 获取调度器状态
// @Description 返回任务调度器的运行状态信息
// @Tags Scheduler
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /scheduler/status [get]
func (h *HandlerService) GetSchedulerStatus(c *gin.Context) {
	if h.schedulerUnavailable(c) {
		return
	}
	response.OK(c, http.StatusOK, "SCHEDULER_OK", h.scheduler.GetStatus())
}

// GetScheduledJobs returns all scheduled jobs
// @Summary 获取定时任务列表
// @Description 返回所有已配置的定时任务信息
// @Tags Scheduler
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /scheduler/jobs [get]
func (h *HandlerService) GetScheduledJobs(c *gin.Context) {
	if h.schedulerUnavailable(c) {
		return
	}

	jobs := h.scheduler.GetJobs()
	response.OK(c, http.StatusOK, "JOBS_OK", gin.H{
		"jobs":      jobs,
		"count":     len(jobs),
		"timestamp": getCurrentTimestamp(),
	})
}

// TriggerScheduledJob runs a job now and returns its updated state
// @Summary 立即执行定时任务
// @Tags Scheduler
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /scheduler/jobs/{id}/run [post]
func (h *HandlerService) TriggerScheduledJob(c *gin.Context) {
	if h.schedulerUnavailable(c) {
		return
	}

	job, err := h.scheduler.RunJob(c.Param("id"))
	if err != nil {
		HandleError(c, "JOB_FAIL", err, gin.H{"id": c.Param("id")})
		return
	}

	if job.Status == scheduler.JobStatusFailed {
		response.Fail(c, http.StatusInternalServerError, "JOB_FAILED", job.LastError, gin.H{"job": job})
		return
	}
	response.OK(c, http.StatusOK, "JOB_OK", gin.H{"job": job})
}

// Package status defines the one-byte result codes carried in every packet.
// The space is partitioned: [0x00, 0x20) manager/API, [0x20, 0x70)
// task/runtime, [0x70, 0xFF] application-defined.
package status

import "fmt"

// Code is an 8-bit status transmitted as packet byte 4.
type Code uint8

const (
	OK Code = 0x00

	// Manager / API codes.
	TaskNotRegistered      Code = 0x01
	TaskAlreadyRunning     Code = 0x02
	TaskAlreadyPaused      Code = 0x03
	TaskAlreadyResumed     Code = 0x04
	TaskNotPaused          Code = 0x05
	TaskNotRunning         Code = 0x06
	InvalidStateTransition Code = 0x07
	TaskAlreadyFinished    Code = 0x08
	TaskAlreadyAborted     Code = 0x09
	PermissionDenied       Code = 0x0A
	WouldBlock             Code = 0x0B
	ReentrancyConflict     Code = 0x0C
	ChannelNull            Code = 0x0D
	ChannelError           Code = 0x0E
	ConstructorNotFound    Code = 0x0F
	InvalidParams          Code = 0x10
	OutOfMemory            Code = 0x11
	TaskLimitReached       Code = 0x12
	DuplicateTask          Code = 0x13
	TaskUnknown            Code = 0x14
	InternalError          Code = 0x1F

	// Task / runtime codes.
	TaskFinished          Code = 0x20
	TaskAborted           Code = 0x21
	TaskTimeout           Code = 0x22
	TaskIOError           Code = 0x23
	TaskValidationFailed  Code = 0x24
	TaskDependencyMissing Code = 0x25
	TaskBusy              Code = 0x26

	// First application-defined code.
	CustomErrorStart Code = 0x70
)

// IsManager reports a manager/API code (OK included).
func IsManager(c Code) bool { return c < 0x20 }

// IsTask reports a task/runtime code.
func IsTask(c Code) bool { return c >= 0x20 && c < CustomErrorStart }

// IsCustom reports an application-defined code.
func IsCustom(c Code) bool { return c >= CustomErrorStart }

func (c Code) String() string {
	switch c {
	case OK:
		return "ok"
	case TaskNotRegistered:
		return "task_not_registered"
	case TaskAlreadyRunning:
		return "task_already_running"
	case TaskAlreadyPaused:
		return "task_already_paused"
	case TaskAlreadyResumed:
		return "task_already_resumed"
	case TaskNotPaused:
		return "task_not_paused"
	case TaskNotRunning:
		return "task_not_running"
	case InvalidStateTransition:
		return "invalid_state_transition"
	case TaskAlreadyFinished:
		return "task_already_finished"
	case TaskAlreadyAborted:
		return "task_already_aborted"
	case PermissionDenied:
		return "permission_denied"
	case WouldBlock:
		return "would_block"
	case ReentrancyConflict:
		return "reentrancy_conflict"
	case ChannelNull:
		return "channel_null"
	case ChannelError:
		return "channel_error"
	case ConstructorNotFound:
		return "constructor_not_found"
	case InvalidParams:
		return "invalid_params"
	case OutOfMemory:
		return "out_of_memory"
	case TaskLimitReached:
		return "task_limit_reached"
	case DuplicateTask:
		return "duplicate_task"
	case TaskUnknown:
		return "task_unknown"
	case InternalError:
		return "internal_error"
	case TaskFinished:
		return "task_finished"
	case TaskAborted:
		return "task_aborted"
	case TaskTimeout:
		return "task_timeout"
	case TaskIOError:
		return "task_io_error"
	case TaskValidationFailed:
		return "task_validation_failed"
	case TaskDependencyMissing:
		return "task_dependency_missing"
	case TaskBusy:
		return "task_busy"
	default:
		if IsCustom(c) {
			return fmt.Sprintf("custom(%#02x)", uint8(c))
		}
		return fmt.Sprintf("status(%#02x)", uint8(c))
	}
}

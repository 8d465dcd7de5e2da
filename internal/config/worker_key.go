package config

type WorkerKeyStruct struct {
	PersistAnswersQueue   string
	FinalizeAttemptsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistAnswersQueue:   "persist_answers_queue",
	FinalizeAttemptsQueue: "finalize_attempts_queue",
}

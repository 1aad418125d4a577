package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE launched_executions (
				execution_arn TEXT PRIMARY KEY,
				request_id VARCHAR(64) NOT NULL,
				launched_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_launched_executions_launched_at ON launched_executions(launched_at);
		`,
	}
}

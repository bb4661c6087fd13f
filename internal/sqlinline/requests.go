package sqlinline

// The batch-queueing transaction. The content row lock makes the capacity
// check and the inserts atomic across concurrent queueing calls.

const QLockContent = `--sql 847b59db-e30f-42bc-ab0d-d2d272bc825a
select id from contents where id = $1 for update;
`

const QCountProcessingTracks = `--sql 2d12101e-7f98-48cf-a3ff-7984ed94d41d
select count(*) from tracks where content_id = $1 and status = 'processing';
`

const QCountTracks = `--sql 289c299a-6309-431c-8217-42c9c5663123
select count(*) from tracks where content_id = $1;
`

const QInsertRequest = `--sql 02a1bccc-9db8-4138-a6de-b72de9a9e39b
insert into generation_requests (id, content_id, status, prompt, model_id)
values ($1, $2, $3, $4, $5)
returning created_at, updated_at;
`

package sqlinline

// Queries the generation worker runs through the SQLRunner. The claim uses
// SKIP LOCKED so several worker processes can drain the queue concurrently
// without double-claiming a request.

const QWorkerClaimRequest = `--sql 361a9f61-e706-40ed-a47d-905b9ce593e4
with next_request as (
    select id
    from generation_requests
    where status = 'pending'
    order by created_at asc
    for update skip locked
    limit 1
),
updated as (
    update generation_requests
    set status = 'processing', updated_at = now()
    where id in (select id from next_request)
    returning id, content_id, prompt, model_id
)
select * from updated;
`

const QCompleteRequest = `--sql f1506872-c7f1-4cfe-9d3b-e19af9cfdd19
update generation_requests
set status = 'completed',
    external_task_id = $2,
    updated_at = now()
where id = $1;
`

const QFailRequest = `--sql 868abf48-2364-41b0-a887-1ca0de4b4392
update generation_requests
set status = 'failed',
    external_task_id = coalesce(nullif($2, ''), external_task_id),
    error_message = $3,
    updated_at = now()
where id = $1;
`

const QRecordTaskID = `--sql 0d3dacdf-4d6b-4eab-9ec9-60e00f725cff
update generation_requests
set external_task_id = $2, updated_at = now()
where id = $1;
`

const QInsertTrack = `--sql 08d2f0e7-9bae-47e7-8f08-1ce2c950a516
insert into tracks (id, content_id, generation_request_id, title, status, audio_key, duration_seconds)
values (gen_random_uuid(), $1, $2, $3, 'completed', $4, $5)
returning id;
`

package timescaledb

const createTableSQL = `
CREATE TABLE IF NOT EXISTS readings (
    time timestamp WITH TIME ZONE NOT NULL,
    node_id text NULL,
    temp_c float4 NULL,
    rh_pct float4 NULL,
    pressure_hpa float4 NULL,
    voc_ohm float4 NULL,
    bme_status text NULL,
    pm1_atm_pms1 float4 NULL,
    pm25_atm_pms1 float4 NULL,
    pm10_atm_pms1 float4 NULL,
    pms1_status text NULL,
    pm1_atm_pms2 float4 NULL,
    pm25_atm_pms2 float4 NULL,
    pm10_atm_pms2 float4 NULL,
    pms2_status text NULL,
    pm25_pms_mean float4 NULL,
    pm25_pms_rpd float4 NULL,
    pm25_pair_flag text NULL,
    pm25_suspect_sensor text NULL,
    pm25_aqi int4 NULL,
    so2_ppm float4 NULL,
    so2_raw int4 NULL,
    so2_byte0 int4 NULL,
    so2_byte1 int4 NULL,
    so2_error text NULL,
    so2_status text NULL
);`

const createExtensionSQL = `CREATE EXTENSION IF NOT EXISTS timescaledb;`

const createHypertableSQL = `SELECT create_hypertable('readings', 'time', if_not_exists => TRUE);`

// Hourly roll-up used by dashboards; pair flags are not aggregated,
// only the numeric channels.
const create1hViewSQL = `
CREATE MATERIALIZED VIEW IF NOT EXISTS readings_1h
WITH (timescaledb.continuous) AS
SELECT
    time_bucket('1 hour', time) AS bucket,
    node_id,
    avg(temp_c) AS temp_c,
    avg(rh_pct) AS rh_pct,
    avg(pressure_hpa) AS pressure_hpa,
    avg(pm25_atm_pms1) AS pm25_atm_pms1,
    avg(pm25_atm_pms2) AS pm25_atm_pms2,
    avg(pm25_pms_mean) AS pm25_pms_mean,
    max(pm25_pms_rpd) AS max_pm25_pms_rpd,
    avg(so2_ppm) AS so2_ppm
FROM readings
GROUP BY bucket, node_id
WITH NO DATA;`

const addAggregationPolicy1hSQL = `
SELECT add_continuous_aggregate_policy('readings_1h',
    start_offset => INTERVAL '3 hours',
    end_offset => INTERVAL '1 hour',
    schedule_interval => INTERVAL '1 hour',
    if_not_exists => TRUE);`
